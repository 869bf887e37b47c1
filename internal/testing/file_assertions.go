package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// OutputAssertions checks the files a build wrote below an output directory.
type OutputAssertions struct {
	t       *testing.T
	baseDir string
}

// NewOutputAssertions creates assertions over baseDir.
func NewOutputAssertions(t *testing.T, baseDir string) *OutputAssertions {
	return &OutputAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists
func (oa *OutputAssertions) AssertFileExists(relativePath string) *OutputAssertions {
	oa.t.Helper()
	assert.FileExists(oa.t, filepath.Join(oa.baseDir, relativePath))
	return oa
}

// AssertFileNotExists validates that a file does not exist
func (oa *OutputAssertions) AssertFileNotExists(relativePath string) *OutputAssertions {
	oa.t.Helper()
	assert.NoFileExists(oa.t, filepath.Join(oa.baseDir, relativePath))
	return oa
}

// AssertPage validates that the page for slug was written.
func (oa *OutputAssertions) AssertPage(slug string) *OutputAssertions {
	oa.t.Helper()
	return oa.AssertFileExists(slug + ".html")
}

// AssertPageContains validates that the page for slug contains every fragment.
func (oa *OutputAssertions) AssertPageContains(slug string, fragments ...string) *OutputAssertions {
	oa.t.Helper()
	return oa.AssertFileContains(slug+".html", fragments...)
}

// AssertPageNotContains validates that the page for slug contains none of the fragments.
func (oa *OutputAssertions) AssertPageNotContains(slug string, fragments ...string) *OutputAssertions {
	oa.t.Helper()
	text := oa.ReadFile(slug + ".html")
	for _, f := range fragments {
		assert.NotContains(oa.t, text, f, "page %s", slug)
	}
	return oa
}

// AssertFileContains validates that a file contains every fragment.
func (oa *OutputAssertions) AssertFileContains(relativePath string, fragments ...string) *OutputAssertions {
	oa.t.Helper()
	text := oa.ReadFile(relativePath)
	for _, f := range fragments {
		assert.Contains(oa.t, text, f, "file %s", relativePath)
	}
	return oa
}

// AssertFileEquals validates the exact content of a file.
func (oa *OutputAssertions) AssertFileEquals(relativePath, expected string) *OutputAssertions {
	oa.t.Helper()
	assert.Equal(oa.t, expected, oa.ReadFile(relativePath), "file %s", relativePath)
	return oa
}

// AssertOrder validates that the fragments appear in the file in the given order.
func (oa *OutputAssertions) AssertOrder(relativePath string, fragments ...string) *OutputAssertions {
	oa.t.Helper()
	text := oa.ReadFile(relativePath)
	last := -1
	for _, f := range fragments {
		i := strings.Index(text, f)
		if !assert.GreaterOrEqual(oa.t, i, 0, "file %s lacks %q", relativePath, f) {
			return oa
		}
		assert.Greater(oa.t, i, last, "file %s: %q out of order", relativePath, f)
		last = i
	}
	return oa
}

// AssertFileCount validates the number of regular files below the output directory.
func (oa *OutputAssertions) AssertFileCount(expected int) *OutputAssertions {
	oa.t.Helper()
	assert.Len(oa.t, oa.ListFiles(), expected)
	return oa
}

// ReadFile returns the content of a file, failing the test when it cannot be read.
func (oa *OutputAssertions) ReadFile(relativePath string) string {
	oa.t.Helper()
	data, err := os.ReadFile(filepath.Join(oa.baseDir, relativePath))
	require.NoError(oa.t, err)
	return string(data)
}

// ListFiles returns the slash-separated paths of every regular file, sorted.
func (oa *OutputAssertions) ListFiles() []string {
	oa.t.Helper()
	var files []string
	err := filepath.WalkDir(oa.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, rerr := filepath.Rel(oa.baseDir, path)
			if rerr != nil {
				return rerr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(oa.t, err)
	return files
}
