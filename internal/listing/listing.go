// Package listing aggregates a directory of content files into one rendered list.
package listing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/makesite/internal/content"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/metrics"
	"git.home.luguber.info/inful/makesite/internal/render"
)

const (
	// KeyCount is bound to the number of items in the list.
	KeyCount = "num_list_items"
	// KeyRender makes items without an item layout render their own content.
	KeyRender = "render"
	// DefaultDiscriminant is the field tallied into num_<value> bindings.
	DefaultDiscriminant = "type"
)

// Request describes one list.
type Request struct {
	Pattern string // filepath.Glob pattern of the item files
	// ItemLayout renders each item; nil means the item's content is used.
	ItemLayout *string
	OutputKey  string
	// Discriminant names the field counted into num_<value>. Empty means "type".
	Discriminant string
	// NoTally skips the num_<value> bindings.
	NoTally bool
}

// Aggregator builds lists from content files.
type Aggregator struct {
	Loader      *content.Loader
	Recorder    metrics.Recorder
	Logger      *slog.Logger
	Concurrency int // parallel loads, GOMAXPROCS when <= 0
}

// Aggregate renders the list described by req and returns b extended with
// req.OutputKey, num_list_items and the num_<value> tallies. b is not modified.
// No matching files is not an error.
func (a *Aggregator) Aggregate(ctx context.Context, req Request, b render.Bindings) (render.Bindings, error) {
	log := a.logger().With(logfields.Pattern(req.Pattern))

	paths, err := a.match(req.Pattern)
	if err != nil {
		return nil, err
	}

	items, err := a.loadAll(ctx, log, paths)
	if err != nil {
		return nil, err
	}

	for i, it := range items {
		items[i] = withContent(it, render.Render(it.Content(), b))
	}

	sort.SliceStable(items, func(i, j int) bool {
		yi, mi, di := items[i].DateKey()
		yj, mj, dj := items[j].DateKey()
		if yi != yj {
			return yi > yj
		}
		if mi != mj {
			return mi > mj
		}
		return di > dj
	})

	out := render.Bindings{}
	if !req.NoTally {
		disc := req.Discriminant
		if disc == "" {
			disc = DefaultDiscriminant
		}
		for key, n := range tally(items, disc) {
			out[key] = n
		}
	}
	// The total wins over a tally whose value normalises to "list_items".
	out[KeyCount] = len(items)

	var sb strings.Builder
	for _, it := range items {
		log.Debug("Rendering list item", slog.String("date", it.String(content.FieldDate)), logfields.Slug(it.Slug()))
		merged := render.Merge(b, it.Bindings())
		switch {
		case req.ItemLayout != nil:
			sb.WriteString(render.Render(*req.ItemLayout, merged))
		case b.Flag(KeyRender):
			sb.WriteString(render.Render(it.Content(), merged))
		default:
			sb.WriteString(it.Content())
		}
	}
	out[req.OutputKey] = sb.String()

	metrics.OrNoop(a.Recorder).ObserveListItems(req.OutputKey, len(items))
	log.Info("Rendered list", slog.String("key", req.OutputKey), logfields.Count(len(items)))
	return render.Merge(b, out), nil
}

// match globs pattern, dropping hidden entries and directories, sorted by path.
func (a *Aggregator) match(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.ValidationError("invalid list pattern").
			WithCause(err).
			WithContext("pattern", pattern).
			Build()
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), ".") {
			continue
		}
		if fi, err := os.Stat(m); err == nil && fi.IsDir() {
			continue
		}
		paths = append(paths, m)
	}
	slices.Sort(paths)
	return paths, nil
}

// loadAll loads every path in parallel. Each result lands in its own slot so the
// outcome is in path order regardless of scheduling. A malformed file name
// aborts; other failures drop the item with a warning.
func (a *Aggregator) loadAll(ctx context.Context, log *slog.Logger, paths []string) ([]content.Record, error) {
	slots := make([]content.Record, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := a.Loader.Load(path)
			switch {
			case err == nil:
				slots[i] = rec
			case errors.IsMalformedFilename(err):
				return err
			default:
				log.Warn("Skipping list item", logfields.Path(path), logfields.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]content.Record, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			items = append(items, rec)
		}
	}
	return items, nil
}

func (a *Aggregator) concurrency() int {
	if a.Concurrency > 0 {
		return a.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func withContent(rec content.Record, body string) content.Record {
	out := content.Record(render.Merge(rec.Bindings()))
	out[content.FieldContent] = body
	return out
}

// tally counts items per value of field into num_<value> keys.
func tally(items []content.Record, field string) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		if _, ok := it[field]; !ok {
			continue
		}
		counts["num_"+CountKey(it.String(field))]++
	}
	return counts
}

// CountKey normalises a discriminant value for use in a binding name: lower
// case, anything outside [a-z0-9_] replaced by '_'.
func CountKey(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(value))
}
