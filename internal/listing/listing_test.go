package listing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/makesite/internal/content"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/markup"
	"git.home.luguber.info/inful/makesite/internal/render"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, text := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	}
}

func newAggregator() *Aggregator {
	return &Aggregator{
		Loader:      &content.Loader{Converter: markup.NewGoldmark(markup.Options{})},
		Concurrency: 2,
	}
}

func ptr(s string) *string { return &s }

func TestAggregateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"2021-01-01-a.md": "A",
		"2021-06-01-b.md": "B",
		"none.md":         "N",
	})

	out, err := newAggregator().Aggregate(t.Context(), Request{
		Pattern:    filepath.Join(dir, "*"),
		ItemLayout: ptr("<li>{{slug}}</li>"),
		OutputKey:  "list",
	}, render.Bindings{})
	require.NoError(t, err)

	assert.Equal(t, "<li>b</li><li>a</li><li>none</li>", out["list"])
	assert.Equal(t, 3, out[KeyCount])
}

func TestAggregateStableDescendingSort(t *testing.T) {
	dir := t.TempDir()
	dated := func(y, m, d string) string {
		return "<!-- date_year: " + y + " -->\n<!-- date_month: " + m + " -->\n<!-- date_day: " + d + " -->\n"
	}
	writeFiles(t, dir, map[string]string{
		"item1.txt": dated("2021", "05", "01"),
		"item2.txt": dated("2020", "01", "01"),
		"item3.txt": dated("2021", "05", "01"),
	})

	out, err := newAggregator().Aggregate(t.Context(), Request{
		Pattern:    filepath.Join(dir, "*.txt"),
		ItemLayout: ptr("{{ slug }};"),
		OutputKey:  "order",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "item1;item3;item2;", out["order"])
}

func TestAggregateEmpty(t *testing.T) {
	b := render.Bindings{"title": "x"}
	out, err := newAggregator().Aggregate(t.Context(), Request{
		Pattern:   filepath.Join(t.TempDir(), "*"),
		OutputKey: "content",
	}, b)
	require.NoError(t, err)
	assert.Equal(t, "", out["content"])
	assert.Equal(t, 0, out[KeyCount])
	assert.Equal(t, "x", out["title"])
	assert.NotContains(t, b, "content", "input bindings untouched")
}

func TestAggregateRenderModes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"2020-01-01-x.html": "<!-- title: X -->\n<p>{{ title }} by {{ author }}</p>",
	})
	req := Request{Pattern: filepath.Join(dir, "*"), OutputKey: "content"}

	t.Run("raw content is rendered against page bindings only", func(t *testing.T) {
		out, err := newAggregator().Aggregate(t.Context(), req, render.Bindings{"author": "me"})
		require.NoError(t, err)
		assert.Equal(t, "<p>{{ title }} by me</p>", out["content"])
	})

	t.Run("render flag merges item fields", func(t *testing.T) {
		out, err := newAggregator().Aggregate(t.Context(), req, render.Bindings{"author": "me", "render": true})
		require.NoError(t, err)
		assert.Equal(t, "<p>X by me</p>", out["content"])
	})

	t.Run("string render flag", func(t *testing.T) {
		out, err := newAggregator().Aggregate(t.Context(), req, render.Bindings{"author": "me", "render": "true"})
		require.NoError(t, err)
		assert.Equal(t, "<p>X by me</p>", out["content"])
	})

	t.Run("item fields win over bindings in item layout", func(t *testing.T) {
		r := req
		r.ItemLayout = ptr("{{ title }}/{{ site }}")
		out, err := newAggregator().Aggregate(t.Context(), r, render.Bindings{"title": "Site", "site": "s"})
		require.NoError(t, err)
		assert.Equal(t, "X/s", out["content"])
	})
}

func TestAggregateDiscriminant(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "<!-- type: Journal -->\na",
		"b.txt": "<!-- type: journal -->\nb",
		"c.txt": "<!-- type: Conference Paper -->\nc",
		"d.txt": "d",
	})
	agg := newAggregator()

	out, err := agg.Aggregate(t.Context(), Request{Pattern: filepath.Join(dir, "*"), OutputKey: "pubs"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out["num_journal"])
	assert.Equal(t, 1, out["num_conference_paper"])
	assert.Equal(t, 4, out[KeyCount])

	out, err = agg.Aggregate(t.Context(), Request{Pattern: filepath.Join(dir, "*"), OutputKey: "pubs", NoTally: true}, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "num_journal")
}

func TestAggregateTallyCannotOverrideCount(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "<!-- type: list items -->\na",
		"b.txt": "b",
		"c.txt": "c",
	})

	out, err := newAggregator().Aggregate(t.Context(), Request{Pattern: filepath.Join(dir, "*"), OutputKey: "l"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out[KeyCount])
}

func TestAggregateSkipsHiddenAndDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":       "a",
		".hidden.txt": "h",
		"sub/b.txt":   "b",
		"z.txt":       "",
	})

	out, err := newAggregator().Aggregate(t.Context(), Request{Pattern: filepath.Join(dir, "*"), OutputKey: "l"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out[KeyCount])
	assert.Equal(t, "a", out["l"])
}

func TestAggregateMalformedFilenameAborts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":          "a",
		"2021-01-01.txt": "no slug",
	})

	_, err := newAggregator().Aggregate(t.Context(), Request{Pattern: filepath.Join(dir, "*"), OutputKey: "l"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedFilename(err))
}

func TestCountKey(t *testing.T) {
	assert.Equal(t, "journal", CountKey("Journal"))
	assert.Equal(t, "conference_paper", CountKey("Conference Paper"))
	assert.Equal(t, "a_b_2", CountKey("a-b.2"))
}
