package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/makesite/internal/eventstore"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	sitetest "git.home.luguber.info/inful/makesite/internal/testing"
)

func newGlobal() (*Global, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Global{Logger: slog.New(slog.DiscardHandler), Out: out}, out
}

// initSite writes the example site into a temp dir and returns the CLI for it.
func initSite(t *testing.T) *CLI {
	t.Helper()
	root := &CLI{Config: filepath.Join(t.TempDir(), "site.yaml"), Verbose: true}
	g, out := newGlobal()
	require.NoError(t, (&InitCmd{}).Run(g, root))
	assert.Contains(t, out.String(), "Initialized site in")
	return root
}

func editSite(t *testing.T, root *CLI, old, repl string) {
	t.Helper()
	data, err := os.ReadFile(root.Config)
	require.NoError(t, err)
	require.Contains(t, string(data), old)
	require.NoError(t, os.WriteFile(root.Config, []byte(strings.Replace(string(data), old, repl, 1)), 0o600))
}

func TestInitAndBuildExampleSite(t *testing.T) {
	root := initSite(t)
	g, out := newGlobal()

	require.NoError(t, (&BuildCmd{}).Run(g, root))
	assert.Contains(t, out.String(), "Built 2 of 2 pages")

	sitetest.NewOutputAssertions(t, filepath.Join(filepath.Dir(root.Config), "_site")).
		AssertFileExists("css/style.css").
		AssertPageContains("index", "<title>My site</title>", "<strong>My site</strong>", "News (1)").
		AssertPageContains("blog", "<title>Blog</title>", "<h1>Blog</h1>", "Hello, Admin").
		AssertPageNotContains("index", "{{ nav }}")
}

func TestInitRefusesExistingSite(t *testing.T) {
	root := initSite(t)
	g, _ := newGlobal()

	err := (&InitCmd{}).Run(g, root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	require.NoError(t, (&InitCmd{Force: true}).Run(g, root))
}

func TestBuildOutputOverride(t *testing.T) {
	root := initSite(t)
	g, _ := newGlobal()
	out := filepath.Join(t.TempDir(), "public")

	require.NoError(t, (&BuildCmd{Output: out}).Run(g, root))
	sitetest.NewOutputAssertions(t, out).AssertPage("index").AssertPage("blog")
	assert.NoDirExists(t, filepath.Join(filepath.Dir(root.Config), "_site"))
}

func TestBuildMissingSiteFile(t *testing.T) {
	g, _ := newGlobal()
	err := (&BuildCmd{}).Run(g, &CLI{Config: filepath.Join(t.TempDir(), "site.yaml"), Verbose: true})
	require.Error(t, err)
	assert.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestHistory(t *testing.T) {
	root := initSite(t)
	editSite(t, root, "history:\n  enabled: false", "history:\n  enabled: true")
	g, out := newGlobal()

	require.NoError(t, (&BuildCmd{}).Run(g, root))
	require.NoError(t, (&BuildCmd{}).Run(g, root))

	out.Reset()
	require.NoError(t, (&HistoryCmd{Limit: 10}).Run(g, root))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BUILD"))
	assert.Contains(t, lines[1], "completed")
	assert.Contains(t, lines[1], "cli")

	out.Reset()
	require.NoError(t, (&HistoryCmd{Limit: 1, JSON: true}).Run(g, root))
	var builds []eventstore.BuildSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &builds))
	require.Len(t, builds, 1)
	assert.Equal(t, 2, builds[0].Pages)
	assert.FileExists(t, filepath.Join(filepath.Dir(root.Config), ".makesite", "history.db"))
}

func TestHistoryDisabled(t *testing.T) {
	root := initSite(t)
	g, _ := newGlobal()
	err := (&HistoryCmd{Limit: 10}).Run(g, root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParseFlags(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"-c", "/srv/site/site.yaml", "build", "-o", "/tmp/out", "--no-clean"})
	require.NoError(t, err)
	assert.Equal(t, "build", ctx.Command())
	assert.Equal(t, "/srv/site/site.yaml", cli.Config)
	assert.Equal(t, "/tmp/out", cli.Build.Output)
	assert.True(t, cli.Build.NoClean)

	ctx, err = parser.Parse([]string{"daemon", "--interval", "90s", "--no-initial-build"})
	require.NoError(t, err)
	assert.Equal(t, "daemon", ctx.Command())
	assert.Equal(t, 90*time.Second, cli.Daemon.Interval)
	assert.True(t, cli.Daemon.NoInitialBuild)

	ctx, err = parser.Parse([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", ctx.Command())
	assert.Equal(t, "localhost:8000", cli.Serve.Addr)

	ctx, err = parser.Parse([]string{"history", "-n", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, cli.History.Limit)
	assert.Equal(t, "history", ctx.Command())
}
