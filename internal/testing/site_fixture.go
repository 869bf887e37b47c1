package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/makesite/internal/config"
)

// SiteFixture writes a site tree into a temporary directory for tests.
type SiteFixture struct {
	t    *testing.T
	dir  string
	site map[string]any
}

// NewSiteFixture creates an empty site in t.TempDir(). The site file is only
// written by WriteConfig or Config.
func NewSiteFixture(t *testing.T) *SiteFixture {
	t.Helper()
	return &SiteFixture{
		t:    t,
		dir:  t.TempDir(),
		site: map[string]any{"layouts": map[string]any{}},
	}
}

// Dir is the site directory.
func (f *SiteFixture) Dir() string { return f.dir }

// OutputDir is the default output directory of the site.
func (f *SiteFixture) OutputDir() string { return filepath.Join(f.dir, "_site") }

// WithFile writes text to the site-relative path.
func (f *SiteFixture) WithFile(rel, text string) *SiteFixture {
	f.t.Helper()
	path := filepath.Join(f.dir, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), testDirPermissions))
	require.NoError(f.t, os.WriteFile(path, []byte(text), testFilePermissions))
	return f
}

// WithContent writes a content file below content/.
func (f *SiteFixture) WithContent(rel, text string) *SiteFixture {
	return f.WithFile(filepath.Join("content", rel), text)
}

// WithStatic writes a file below static/.
func (f *SiteFixture) WithStatic(rel, text string) *SiteFixture {
	return f.WithFile(filepath.Join("static", rel), text)
}

// WithLayout writes layout/<name>.html, loaded implicitly under name.
func (f *SiteFixture) WithLayout(name, text string) *SiteFixture {
	return f.WithFile(filepath.Join("layout", name+".html"), text)
}

// WithLayoutSpec declares a composed layout in the site file.
func (f *SiteFixture) WithLayoutSpec(name string, spec map[string]any) *SiteFixture {
	f.site["layouts"].(map[string]any)[name] = spec
	return f
}

// WithPage appends a page to the site file.
func (f *SiteFixture) WithPage(page map[string]any) *SiteFixture {
	pages, _ := f.site["pages"].([]any)
	f.site["pages"] = append(pages, page)
	return f
}

// With sets a top level key of the site file.
func (f *SiteFixture) With(key string, value any) *SiteFixture {
	f.site[key] = value
	return f
}

// WriteConfig writes site.yaml and returns its path.
func (f *SiteFixture) WriteConfig() string {
	f.t.Helper()
	data, err := yaml.Marshal(f.site)
	require.NoError(f.t, err)
	path := filepath.Join(f.dir, config.DefaultConfigFile)
	require.NoError(f.t, os.WriteFile(path, data, testFilePermissions))
	return path
}

// Config writes and loads the site file.
func (f *SiteFixture) Config() *config.Config {
	f.t.Helper()
	cfg, err := config.Load(f.WriteConfig())
	require.NoError(f.t, err)
	return cfg
}

// Output returns assertions over the site's output directory.
func (f *SiteFixture) Output() *OutputAssertions {
	return NewOutputAssertions(f.t, f.OutputDir())
}
