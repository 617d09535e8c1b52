package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrDestination marks failures to create destination directories; they
// abort the whole run.
var ErrDestination = errors.New("cannot create destination directory")

// Index maps grouping keys to destination directories. A directory is created
// the first time its key is resolved and is never touched again afterwards.
// An Index belongs to a single run.
type Index struct {
	root     string
	dryRun   bool
	dirs     map[string]string
	mkdirAll func(string, os.FileMode) error
}

// NewIndex returns an Index rooted at root. In dry-run mode directories are
// computed but not created.
func NewIndex(root string, dryRun bool) *Index {
	return &Index{
		root:     root,
		dryRun:   dryRun,
		dirs:     make(map[string]string),
		mkdirAll: os.MkdirAll,
	}
}

// Resolve returns the directory for key, creating root/parts... on first use.
func (i *Index) Resolve(key string, parts ...string) (string, error) {
	if dir, ok := i.dirs[key]; ok {
		return dir, nil
	}

	dir := filepath.Join(append([]string{i.root}, parts...)...)
	if !i.dryRun {
		if err := i.mkdirAll(dir, os.ModePerm); err != nil {
			return "", fmt.Errorf("%w %v: %w", ErrDestination, dir, err)
		}
	}

	i.dirs[key] = dir
	return dir, nil
}

func (i *Index) Len() int {
	return len(i.dirs)
}

// DateKey returns the grouping key and path components for t: year and
// unpadded month.
func DateKey(t time.Time) (string, []string) {
	year, month := strconv.Itoa(t.Year()), strconv.Itoa(int(t.Month()))
	return year + "-" + month, []string{year, month}
}

// DeviceKey prefixes DateKey with the device, which always maps to a single
// directory level.
func DeviceKey(device string, t time.Time) (string, []string) {
	dir := deviceDir(device)
	key, parts := DateKey(t)
	return dir + "/" + key, append([]string{dir}, parts...)
}

func deviceDir(device string) string {
	dir := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator || r < 0x20 {
			return '_'
		}
		return r
	}, device)

	if dir == "." || dir == ".." {
		return strings.Repeat("_", len(dir))
	}
	return dir
}
