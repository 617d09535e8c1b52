package fs

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fedragon/go-mediasort/internal/models"

	"go.uber.org/zap"
)

// Walk calls fn, in directory order, for every regular file below root whose
// extension is in fileTypes (every regular file when fileTypes is empty).
// Paths in skip, files or directories, are not visited. Unreadable
// subdirectories are logged and skipped; an error returned by fn stops the
// walk and is returned as is.
func Walk(logger *zap.Logger, root string, fileTypes []string, skip []string, fn func(models.Media) error) error {
	typesMap := make(map[string]bool, len(fileTypes))
	for _, t := range fileTypes {
		typesMap[strings.ToLower(t)] = true
	}

	skipMap := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipMap[filepath.Clean(s)] = true
	}

	root = filepath.Clean(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Error("Cannot read path, skipping it", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if skipMap[path] {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if len(typesMap) > 0 && !typesMap[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Error("Cannot stat file, skipping it", zap.String("path", path), zap.Error(err))
			return nil
		}

		return fn(models.Media{Path: path, Size: info.Size()})
	})
}
