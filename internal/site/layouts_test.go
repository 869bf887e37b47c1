package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/makesite/internal/config"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
)

func writeLayouts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600))
	}
	return dir
}

func TestLoadLayoutsImplicit(t *testing.T) {
	dir := writeLayouts(t, map[string]string{
		"page.html":  "<p>{{ content }}</p>",
		"item.tmpl":  "<li>{{ title }}</li>",
		".hidden.sw": "ignored",
	})
	layouts, err := LoadLayouts(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"page": "<p>{{ content }}</p>",
		"item": "<li>{{ title }}</li>",
	}, layouts)
}

func TestLoadLayoutsMissingDir(t *testing.T) {
	layouts, err := LoadLayouts(filepath.Join(t.TempDir(), "none"), nil)
	require.NoError(t, err)
	assert.Empty(t, layouts)
}

func TestLoadLayoutsComposition(t *testing.T) {
	dir := writeLayouts(t, map[string]string{
		"base.html": "<html>{{ nav }}|{{ content }}|{{ title }}</html>",
		"nav.html":  "<nav>{{ base_path }}</nav>",
		"home.html": "<h1>{{ title }}</h1>",
		"post.html": "<article>{{ body }}</article>",
	})
	layouts, err := LoadLayouts(dir, map[string]config.LayoutConfig{
		"base":  {File: "base.html", Bind: map[string]string{"nav": "nav"}},
		"index": {File: "home.html", Extends: "base"},
		"blog":  {File: "post.html", Extends: "index"},
	})
	require.NoError(t, err)

	assert.Equal(t, "<html><nav>{{ base_path }}</nav>|{{ content }}|{{ title }}</html>", layouts["base"])
	assert.Equal(t, "<html><nav>{{ base_path }}</nav>|<h1>{{ title }}</h1>|{{ title }}</html>", layouts["index"])
	assert.Equal(t, "<html><nav>{{ base_path }}</nav>|<h1>{{ title }}</h1>|{{ title }}</html>", layouts["blog"])
	assert.Equal(t, "<h1>{{ title }}</h1>", layouts["home"])
}

func TestLoadLayoutsCycle(t *testing.T) {
	dir := writeLayouts(t, map[string]string{"a.html": "a", "b.html": "b"})
	_, err := LoadLayouts(dir, map[string]config.LayoutConfig{
		"a": {File: "a.html", Extends: "b"},
		"b": {File: "b.html", Bind: map[string]string{"x": "a"}},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	assert.Contains(t, err.Error(), "layout composition cycle")
}

func TestLoadLayoutsUnknownReference(t *testing.T) {
	dir := writeLayouts(t, map[string]string{"a.html": "a"})
	_, err := LoadLayouts(dir, map[string]config.LayoutConfig{
		"a": {File: "a.html", Extends: "missing"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown layout")
}

func TestLoadLayoutsMissingFile(t *testing.T) {
	_, err := LoadLayouts(t.TempDir(), map[string]config.LayoutConfig{
		"page": {File: "page.html"},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}
