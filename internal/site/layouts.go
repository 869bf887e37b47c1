package site

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/render"
)

// LoadLayouts reads the layout files of dir and resolves their composition.
//
// Every file directly in dir is a layout named after its base name
// (page.html -> page). Entries in specs add or rename layouts and compose them:
// Bind renders the layout with other resolved layouts bound under the given
// keys, Extends renders the parent layout with this one bound as content.
// Placeholders that are not layout references stay in place for the page render.
func LoadLayouts(dir string, specs map[string]config.LayoutConfig) (map[string]string, error) {
	raw := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.FileSystemError("read layout directory").WithCause(err).WithContext("path", dir).Build()
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.FileSystemError("read layout").WithCause(err).WithContext("path", e.Name()).Build()
		}
		raw[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = string(text)
	}

	for name, spec := range specs {
		path := filepath.Join(dir, spec.File)
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.TemplateError("layout file not readable").
				WithCause(err).
				WithContext("name", name).
				WithContext("path", path).
				Build()
		}
		raw[name] = string(text)
	}

	r := &layoutResolver{raw: raw, specs: specs, done: make(map[string]string)}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, err := r.resolve(name, nil); err != nil {
			return nil, err
		}
	}
	return r.done, nil
}

type layoutResolver struct {
	raw   map[string]string
	specs map[string]config.LayoutConfig
	done  map[string]string
}

func (r *layoutResolver) resolve(name string, chain []string) (string, error) {
	if text, ok := r.done[name]; ok {
		return text, nil
	}
	if slices.Contains(chain, name) {
		return "", errors.TemplateError("layout composition cycle").
			WithContext("name", strings.Join(append(chain, name), " -> ")).
			Build()
	}
	text, ok := r.raw[name]
	if !ok {
		return "", errors.TemplateError("unknown layout").
			WithContext("name", name).
			WithContext("referenced_by", strings.Join(chain, " -> ")).
			Build()
	}
	chain = append(chain, name)
	spec := r.specs[name]

	if len(spec.Bind) > 0 {
		b := make(render.Bindings, len(spec.Bind))
		for key, ref := range spec.Bind {
			resolved, err := r.resolve(ref, chain)
			if err != nil {
				return "", err
			}
			b[key] = resolved
		}
		text = render.Render(text, b)
	}
	if spec.Extends != "" {
		parent, err := r.resolve(spec.Extends, chain)
		if err != nil {
			return "", err
		}
		text = render.Render(parent, render.Bindings{"content": text})
	}

	r.done[name] = text
	return text, nil
}
