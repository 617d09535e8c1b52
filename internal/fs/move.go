package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"
)

// swapped in tests to simulate cross-device renames
var renameFunc = os.Rename

// Move moves src to dst and never replaces an existing dst. A rename is
// attempted first; when src and dst live on different volumes the content is
// atomically written to dst and src is removed afterwards.
func Move(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("unable to move %v to %v: %w", src, dst, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) error {
	buf, err := os.Open(src)
	if err != nil {
		return err
	}

	info, err := buf.Stat()
	if err != nil {
		_ = buf.Close()
		return err
	}

	err = atomic.WriteFile(dst, bufio.NewReader(buf))
	if cerr := buf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("unable to atomically copy %v to %v: %w", src, dst, err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied %v to %v but cannot remove source: %w", src, dst, err)
	}

	return nil
}
