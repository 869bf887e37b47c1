package config

import (
	"embed"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

//go:embed all:example
var example embed.FS

// Init writes an example site (site file, layouts, content, static files)
// into dir. Existing files are only overwritten with force.
func Init(dir string, force bool) ([]string, error) {
	root, err := fs.Sub(example, "example")
	if err != nil {
		return nil, errors.InternalError("example site missing").WithCause(err).Build()
	}

	siteFile := filepath.Join(dir, DefaultConfigFile)
	if _, err := os.Stat(siteFile); err == nil && !force {
		return nil, errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("name", siteFile).
			Build()
	}

	var written []string
	err = fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if _, err := os.Stat(dst); err == nil && !force {
			return nil
		} else if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		data, err := fs.ReadFile(root, path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		written = append(written, dst)
		return nil
	})
	if err != nil {
		return written, errors.FileSystemError("failed to write example site").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return written, nil
}
