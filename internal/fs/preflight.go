package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// CheckRename verifies that files inside dir can be renamed in place: the
// source name must be gone and the new name present once the rename returns.
// Nothing is left behind in dir.
func CheckRename(dir string) error {
	scratch, err := os.CreateTemp(dir, ".mediasort-check-*")
	if err != nil {
		return fmt.Errorf("unable to create scratch file in %v: %w", dir, err)
	}
	from := scratch.Name()
	to := from + ".renamed"

	if err := scratch.Close(); err != nil {
		_ = os.Remove(from)
		return err
	}
	defer func() {
		_ = os.Remove(from)
		_ = os.Remove(to)
	}()

	if err := renameFunc(from, to); err != nil {
		return fmt.Errorf("unable to rename scratch file in %v: %w", dir, err)
	}

	if _, err := os.Lstat(from); !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rename in %v left the source name in place", dir)
	}
	if _, err := os.Lstat(to); err != nil {
		return fmt.Errorf("rename in %v did not produce the target name: %w", dir, err)
	}

	return nil
}
