package core

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedragon/go-mediasort/internal/fs"
	"github.com/fedragon/go-mediasort/internal/meta"
	"github.com/fedragon/go-mediasort/internal/metrics"
	"github.com/fedragon/go-mediasort/internal/models"

	"go.uber.org/zap"
)

const maxDivertAttempts = 3

// Sorter decides where a single file belongs and puts it there. Errors are
// scoped to the file, except those wrapping ErrDestination.
type Sorter interface {
	Sort(m models.Media) (models.Outcome, error)
}

// DateSorter moves files to root/year/month. Files without a capture date,
// or whose destination name is already taken, are left where they are.
type DateSorter struct {
	Index     *Index
	Extractor meta.Extractor
	DryRun    bool
	Logger    *zap.Logger
}

func (s *DateSorter) Sort(m models.Media) (models.Outcome, error) {
	outcome := models.Outcome{Action: models.Untouched, Source: m.Path}

	md := s.Extractor.Extract(m.Path)
	if !md.HasCaptureTime() {
		outcome.Reason = "missing creation date"
		s.Logger.Info("Cannot retrieve creation date, leaving file in place", zap.String("path", m.Path))
		return outcome, nil
	}

	key, parts := DateKey(md.CapturedAt)
	dir, err := s.Index.Resolve(key, parts...)
	if err != nil {
		return outcome, err
	}

	target := filepath.Join(dir, filepath.Base(m.Path))
	outcome.Target = target

	state, err := inspect(m.Path, target)
	if err != nil {
		return outcome, err
	}

	switch state {
	case self:
		outcome.Reason = "already in place"
		return outcome, nil
	case taken:
		outcome.Reason = "destination exists"
		s.Logger.Warn("Destination exists, leaving file in place", zap.String("source", m.Path), zap.String("dest", target))
		return outcome, nil
	}

	if err := move(s.DryRun, m.Path, target); err != nil {
		return outcome, err
	}

	outcome.Action = models.Moved
	s.Logger.Info("Moved file", zap.String("source", m.Path), zap.String("dest", target), zap.Bool("dry_run", s.DryRun))
	return outcome, nil
}

// DeviceSorter moves files to root/device/year/month. Files lacking either
// value go to the quarantine area; when the destination name is taken the
// file goes to the skipped area if both contents match, to the quarantine
// area otherwise. Diverted files get a random token in their name.
type DeviceSorter struct {
	Index         *Index
	Extractor     meta.Extractor
	HashFunc      fs.HashFunc
	QuarantineDir string
	SkippedDir    string
	Token         func() string
	Metrics       *metrics.Metrics
	DryRun        bool
	Logger        *zap.Logger
}

func (s *DeviceSorter) Sort(m models.Media) (models.Outcome, error) {
	md := s.Extractor.Extract(m.Path)
	if missing := md.Missing(); len(missing) > 0 {
		return s.quarantine(m, missing)
	}

	outcome := models.Outcome{Action: models.Untouched, Source: m.Path}

	key, parts := DeviceKey(md.Device, md.CapturedAt)
	dir, err := s.Index.Resolve(key, parts...)
	if err != nil {
		return outcome, err
	}

	target := filepath.Join(dir, filepath.Base(m.Path))
	outcome.Target = target

	state, err := inspect(m.Path, target)
	if err != nil {
		return outcome, err
	}

	switch state {
	case self:
		outcome.Reason = "already in place"
		return outcome, nil
	case taken:
		return s.dedup(m, target)
	}

	if err := move(s.DryRun, m.Path, target); err != nil {
		return outcome, err
	}

	outcome.Action = models.Moved
	s.Logger.Info("Moved file", zap.String("source", m.Path), zap.String("dest", target), zap.Bool("dry_run", s.DryRun))
	return outcome, nil
}

func (s *DeviceSorter) quarantine(m models.Media, missing []string) (models.Outcome, error) {
	outcome := models.Outcome{
		Action: models.Quarantined,
		Source: m.Path,
		Reason: "missing " + strings.Join(missing, ", "),
	}

	target, err := s.divert(m.Path, s.QuarantineDir)
	if err != nil {
		return outcome, err
	}
	outcome.Target = target

	s.Logger.Error("Cannot retrieve metadata, moved to quarantine",
		zap.String("source", m.Path),
		zap.String("dest", target),
		zap.Strings("missing", missing),
		zap.Bool("dry_run", s.DryRun),
	)
	return outcome, nil
}

// divert moves src into area under a disambiguated name, drawing a new token
// when the name is already taken.
func (s *DeviceSorter) divert(src, area string) (string, error) {
	name := filepath.Base(src)

	var err error
	for attempt := 0; attempt < maxDivertAttempts; attempt++ {
		target := filepath.Join(area, DisambiguatedName(name, s.Token()))
		if err = move(s.DryRun, src, target); err == nil || !errors.Is(err, iofs.ErrExist) {
			return target, err
		}
	}

	return "", err
}

type slot int

const (
	free slot = iota
	taken
	self
)

// inspect tells whether target is free, taken by another file, or is src
// itself.
func inspect(src, target string) (slot, error) {
	targetInfo, err := os.Lstat(target)
	if errors.Is(err, iofs.ErrNotExist) {
		return free, nil
	}
	if err != nil {
		return taken, err
	}

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return taken, err
	}
	if os.SameFile(srcInfo, targetInfo) {
		return self, nil
	}

	return taken, nil
}

func move(dryRun bool, src, target string) error {
	if dryRun {
		if _, err := os.Lstat(target); err == nil {
			return iofs.ErrExist
		}
		return nil
	}
	return fs.Move(src, target)
}
