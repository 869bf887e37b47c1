package site

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

// prepareOutput empties (when clean) and creates the output directory. It
// refuses to remove a directory that contains the site itself.
func prepareOutput(out, siteDir string, clean bool) error {
	if clean {
		rel, err := filepath.Rel(out, siteDir)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.ConfigError("output directory contains the site, refusing to clean it").
				WithContext("name", out).
				Build()
		}
		if err := os.RemoveAll(out); err != nil {
			return errors.FileSystemError("clean output directory").WithCause(err).WithContext("path", out).Build()
		}
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return errors.FileSystemError("create output directory").WithCause(err).WithContext("path", out).Build()
	}
	return nil
}

// copyTree copies the files below src into dst. A missing src copies nothing.
func copyTree(src, dst string) (int, error) {
	if _, err := os.Stat(src); stderrors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	n := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, errors.FileSystemError("copy static files").WithCause(err).WithContext("path", src).Build()
	}
	return n, nil
}

func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return atomic.WriteFile(dst, f)
}
