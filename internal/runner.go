package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fedragon/go-mediasort/internal/core"
	"github.com/fedragon/go-mediasort/internal/fs"
	"github.com/fedragon/go-mediasort/internal/meta"
	"github.com/fedragon/go-mediasort/internal/metrics"
	"github.com/fedragon/go-mediasort/internal/models"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type Mode int

const (
	ByDate Mode = iota
	ByDevice
)

func (m Mode) String() string {
	if m == ByDevice {
		return "device"
	}
	return "date"
}

var (
	ErrNotDirectory        = errors.New("src is not a directory")
	ErrUnsupportedPlatform = errors.New("destination does not support in-place renames")
)

type Options struct {
	Mode          Mode
	Source        string
	Dest          string
	Hash          string
	FileTypes     []string
	QuarantineDir string
	SkippedDir    string
	TokenLength   int
	DryRun        bool
	// Progress, when set, receives a spinner counting processed files.
	Progress io.Writer
}

type Runner struct {
	logger  *zap.Logger
	opts    Options
	metrics *metrics.Metrics
	// sorterFor builds the sorter and the walk's skip list; newSorter by default.
	sorterFor func(src, dst string, newHash fs.HashFunc) (core.Sorter, []string, error)
}

func NewRunner(logger *zap.Logger, opts Options) *Runner {
	r := &Runner{
		logger:  logger,
		opts:    opts,
		metrics: metrics.NewMetrics(),
	}
	r.sorterFor = r.newSorter
	return r
}

func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

func (r *Runner) Run() error {
	start := time.Now()
	defer func() {
		r.logger.Info("Elapsed time", zap.Duration("elapsed", time.Since(start)))
	}()

	if r.opts.DryRun {
		r.logger.Info("Running in DRY-RUN mode: files will not be moved")
	}

	src, err := filepath.Abs(r.opts.Source)
	if err != nil {
		return err
	}
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %v", ErrNotDirectory, r.opts.Source)
	}

	dst, err := filepath.Abs(r.opts.Dest)
	if err != nil {
		return err
	}

	newHash, err := fs.NewHashFunc(r.opts.Hash)
	if err != nil {
		return err
	}

	if !r.opts.DryRun {
		if err := os.MkdirAll(dst, os.ModePerm); err != nil {
			return fmt.Errorf("%w %v: %w", core.ErrDestination, dst, err)
		}
	}
	if resolved, err := filepath.EvalSymlinks(dst); err == nil {
		dst = resolved
	}

	if _, err := os.Stat(dst); err == nil {
		if err := fs.CheckRename(dst); err != nil {
			return fmt.Errorf("%w: %w", ErrUnsupportedPlatform, err)
		}

		lock, err := fs.AcquireLock(dst)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				r.logger.Warn("Cannot release lock", zap.String("path", lock.Path()), zap.Error(err))
			}
		}()
	}

	r.logger.Info("Sorting files",
		zap.String("mode", r.opts.Mode.String()),
		zap.String("source", src),
		zap.String("dest", dst),
		zap.String("hash", r.opts.Hash),
	)

	sorter, skip, err := r.sorterFor(src, dst, newHash)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if r.opts.Progress != nil {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(r.opts.Progress),
			progressbar.OptionSetDescription("sorting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
	}

	err = fs.Walk(r.logger, src, r.opts.FileTypes, skip, func(m models.Media) error {
		_ = r.metrics.Increment("walked")
		if bar != nil {
			_ = bar.Add(1)
		}

		outcome, err := sorter.Sort(m)
		if err != nil {
			if errors.Is(err, core.ErrDestination) {
				return err
			}
			_ = r.metrics.Increment("failed")
			r.logger.Error("Cannot sort file", zap.String("path", m.Path), zap.Error(err))
			return nil
		}

		_ = r.metrics.Increment(outcome.Action.String())
		if outcome.Action != models.Untouched && !r.opts.DryRun {
			r.metrics.AddBytes("bytes_relocated", m.Size)
		}
		return nil
	})

	r.metrics.Log(r.logger)

	return err
}

// newSorter builds the sorter for the configured mode, along with the paths
// the walk must not visit.
func (r *Runner) newSorter(src, dst string, newHash fs.HashFunc) (core.Sorter, []string, error) {
	index := core.NewIndex(dst, r.opts.DryRun)
	extractor := meta.NewExifExtractor(r.logger)

	skip := []string{filepath.Join(dst, fs.LockName)}
	if dst != src && within(src, dst) {
		skip = append(skip, dst)
	}

	if r.opts.Mode == ByDate {
		return &core.DateSorter{
			Index:     index,
			Extractor: extractor,
			DryRun:    r.opts.DryRun,
			Logger:    r.logger,
		}, skip, nil
	}

	quarantine := filepath.Join(dst, r.opts.QuarantineDir)
	skipped := filepath.Join(dst, r.opts.SkippedDir)
	if !r.opts.DryRun {
		for _, dir := range []string{quarantine, skipped} {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, nil, fmt.Errorf("%w %v: %w", core.ErrDestination, dir, err)
			}
		}
	}
	skip = append(skip, quarantine, skipped)

	tokenLength := r.opts.TokenLength
	return &core.DeviceSorter{
		Index:         index,
		Extractor:     extractor,
		HashFunc:      newHash,
		QuarantineDir: quarantine,
		SkippedDir:    skipped,
		Token:         func() string { return core.NewToken(tokenLength) },
		Metrics:       r.metrics,
		DryRun:        r.opts.DryRun,
		Logger:        r.logger,
	}, skip, nil
}

// within reports whether path lies inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
