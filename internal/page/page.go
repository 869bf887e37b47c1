// Package page composes one output page from its content directory and layout.
package page

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/makesite/internal/content"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/listing"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/render"
)

// KeyListOnly turns the whole content directory of a page into one list bound as content.
const KeyListOnly = "list_only"

// Composer builds pages from ContentRoot/<slug>.
type Composer struct {
	ContentRoot string
	Loader      *content.Loader
	Aggregator  *listing.Aggregator
	Logger      *slog.Logger
}

// Compose resolves every binding of page slug and renders layouts[slug] with
// them. Subdirectories of the content directory become lists rendered with the
// layout of the same name, files are bound under their slug. b is not modified.
func (c *Composer) Compose(ctx context.Context, slug string, layouts map[string]string, b render.Bindings) (string, error) {
	log := c.logger().With(logfields.Page(slug))

	layout, ok := layouts[slug]
	if !ok {
		return "", errors.TemplateError("no layout for page").
			WithContext("name", slug).
			Build()
	}

	dir := filepath.Join(c.ContentRoot, slug)
	bindings := render.Merge(b)

	var err error
	if bindings.Flag(KeyListOnly) {
		bindings, err = c.Aggregator.Aggregate(ctx, listing.Request{
			Pattern:   filepath.Join(dir, "*"),
			OutputKey: "content",
		}, bindings)
		if err != nil {
			return "", err
		}
	} else {
		bindings, err = c.scan(ctx, log, dir, layouts, bindings)
		if err != nil {
			return "", err
		}
	}

	if missing := render.Unresolved(layout, bindings); len(missing) > 0 {
		log.Debug("Unresolved placeholders", slog.Any("tokens", missing))
	}
	log.Info("Rendering page")
	return render.Render(layout, bindings), nil
}

func (c *Composer) scan(ctx context.Context, log *slog.Logger, dir string, layouts map[string]string, b render.Bindings) (render.Bindings, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			log.Warn("No content directory for page", logfields.Path(dir))
			return b, nil
		}
		return nil, errors.FileSystemError("read content directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if e.IsDir() {
			req := listing.Request{Pattern: filepath.Join(path, "*"), OutputKey: name}
			if item, ok := layouts[name]; ok {
				req.ItemLayout = &item
			} else {
				log.Warn("No item layout for list, using item content", logfields.Layout(name))
			}
			if b, err = c.Aggregator.Aggregate(ctx, req, b); err != nil {
				return nil, err
			}
			continue
		}

		rec, err := c.Loader.Load(path)
		if err != nil {
			if errors.IsMalformedFilename(err) {
				return nil, err
			}
			log.Warn("Skipping content file", logfields.Path(path), logfields.Error(err))
			continue
		}
		b = render.Merge(b, render.Bindings{rec.Slug(): render.Render(rec.Content(), b)})
	}
	return b, nil
}

func (c *Composer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
