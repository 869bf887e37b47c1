package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/makesite/internal/eventstore"
	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/metrics"
	"git.home.luguber.info/inful/makesite/internal/notify"
	sitetest "git.home.luguber.info/inful/makesite/internal/testing"
)

var fixedNow = time.Date(2024, 9, 3, 10, 0, 0, 0, time.UTC)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// newBlogSite is a home page with a markdown intro and a dated posts list.
func newBlogSite(t *testing.T) *sitetest.SiteFixture {
	t.Helper()
	return sitetest.NewSiteFixture(t).
		WithLayout("nav", `<nav><a href="{{ base_path }}/index.html">Home</a></nav>`).
		WithLayout("page", `<html><title>{{ title }}</title>{{ nav }}<main>{{ content }}</main><footer>{{ current_year }}</footer></html>`).
		WithLayout("home", `<h1>{{ title }}</h1>{{ intro }}<ul>{{ posts }}</ul><p>{{ num_list_items }} posts</p>`).
		WithLayout("posts", `<li>{{ date_day }} {{ date_month_abbr }} {{ date_year }}: {{ title }}</li>`).
		WithLayoutSpec("page", map[string]any{"file": "page.html", "bind": map[string]any{"nav": "nav"}}).
		WithLayoutSpec("index", map[string]any{"file": "home.html", "extends": "page"}).
		WithContent("index/intro.md", "Hello **world**\n").
		WithContent("index/posts/2024-01-15-first.md", "<!-- title: First -->\nFirst body\n").
		WithContent("index/posts/2024-03-02-second.md", "<!-- title: Second -->\nSecond body\n").
		WithStatic("css/site.css", "body{}").
		WithPage(map[string]any{"slug": "index", "params": map[string]any{"title": "Home"}})
}

type fakePublisher struct {
	mu     sync.Mutex
	events []notify.BuildEvent
}

func (p *fakePublisher) Publish(_ context.Context, e notify.BuildEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	pages    map[metrics.ResultLabel]int
	outcomes []metrics.BuildOutcomeLabel
	stages   []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{pages: make(map[metrics.ResultLabel]int)}
}

func (r *countingRecorder) IncPageResult(_ string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[result]++
}

func (r *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *countingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func TestBuildSite(t *testing.T) {
	site := newBlogSite(t)
	b := NewBuilder(site.Config(), WithLogger(discard()), WithClock(func() time.Time { return fixedNow }))

	report, err := b.Build(t.Context())
	require.NoError(t, err)

	assert.Equal(t, metrics.BuildOutcomeSuccess, report.Outcome)
	assert.Equal(t, 1, report.StaticFiles)
	require.Len(t, report.Pages, 1)
	assert.NotEmpty(t, report.BuildID)
	assert.NotEmpty(t, report.Pages[0].Fingerprint)
	assert.Positive(t, report.Pages[0].Bytes)

	site.Output().
		AssertFileEquals("css/site.css", "body{}").
		AssertPageContains("index",
			"<title>Home</title>",
			`<nav><a href="/index.html">Home</a></nav>`,
			"<h1>Home</h1>",
			"<strong>world</strong>",
			"<p>2 posts</p>",
			"<footer>2024</footer>").
		AssertOrder("index.html", "2 Mar 2024: Second", "15 Jan 2024: First").
		AssertPageNotContains("index", "{{ nav }}", "{{ posts }}")
}

func TestBuildFailedPageContinues(t *testing.T) {
	site := newBlogSite(t).WithPage(map[string]any{"slug": "orphan"})
	b := NewBuilder(site.Config(), WithLogger(discard()))

	report, err := b.Build(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryBuild))
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, metrics.BuildOutcomePartial, report.Outcome)
	assert.Equal(t, []string{"index"}, report.Slugs())
	assert.Equal(t, []string{"orphan"}, report.FailedSlugs())

	site.Output().AssertPage("index").AssertFileNotExists("orphan.html")
}

func TestBuildAllPagesFailed(t *testing.T) {
	site := sitetest.NewSiteFixture(t).WithPage(map[string]any{"slug": "nolayout"})
	b := NewBuilder(site.Config(), WithLogger(discard()))

	report, err := b.Build(t.Context())
	require.Error(t, err)
	assert.Equal(t, metrics.BuildOutcomeFailed, report.Outcome)
}

func TestBuildListOnlyPage(t *testing.T) {
	site := sitetest.NewSiteFixture(t).
		WithLayout("blog", `<section>{{ content }}</section>`).
		WithContent("blog/2024-01-01-old.html", "<p>old</p>").
		WithContent("blog/2024-02-01-new.html", "<p>new {{ author }}</p>").
		With("params", map[string]any{"author": "Ann"}).
		WithPage(map[string]any{"slug": "blog", "list_only": true, "render": true})
	b := NewBuilder(site.Config(), WithLogger(discard()))

	_, err := b.Build(t.Context())
	require.NoError(t, err)
	site.Output().
		AssertPageContains("blog", "<section>", "<p>new Ann</p>").
		AssertOrder("blog.html", "<p>new Ann</p>", "<p>old</p>")
}

func TestBuildCleansOutput(t *testing.T) {
	site := newBlogSite(t).WithFile("_site/stale.html", "old")
	_, err := NewBuilder(site.Config(), WithLogger(discard())).Build(t.Context())
	require.NoError(t, err)
	site.Output().AssertFileNotExists("stale.html").AssertPage("index")
}

func TestBuildKeepsOutputWhenCleanDisabled(t *testing.T) {
	site := newBlogSite(t).WithFile("_site/stale.html", "old").With("clean", false)
	_, err := NewBuilder(site.Config(), WithLogger(discard())).Build(t.Context())
	require.NoError(t, err)
	site.Output().AssertFileExists("stale.html").AssertPage("index")
}

func TestBuildMalformedFilenameFailsPage(t *testing.T) {
	site := newBlogSite(t).WithContent("index/posts/2024-05-06.md", "no name")
	report, err := NewBuilder(site.Config(), WithLogger(discard())).Build(t.Context())
	require.Error(t, err)
	require.Len(t, report.Pages, 1)
	assert.True(t, errors.IsMalformedFilename(report.Pages[0].Err))
}

func TestBuildRecordsHistory(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	b := NewBuilder(newBlogSite(t).Config(), WithLogger(discard()), WithHistory(store))
	report, err := b.Rebuild(t.Context(), TriggerWatch)
	require.NoError(t, err)

	events, err := store.GetByBuildID(t.Context(), report.BuildID)
	require.NoError(t, err)
	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		eventstore.TypeBuildStarted,
		eventstore.TypePageRendered,
		eventstore.TypeBuildCompleted,
	}, types)

	recent, err := store.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, eventstore.StatusCompleted, recent[0].Status)
	assert.Equal(t, TriggerWatch, recent[0].Trigger)
	assert.Equal(t, 1, recent[0].Pages)
}

func TestBuildPublishesAndRecords(t *testing.T) {
	pub := &fakePublisher{}
	rec := newCountingRecorder()
	site := newBlogSite(t).WithPage(map[string]any{"slug": "orphan"})
	b := NewBuilder(site.Config(), WithLogger(discard()), WithPublisher(pub), WithRecorder(rec))

	report, _ := b.Build(t.Context())

	require.Len(t, pub.events, 1)
	e := pub.events[0]
	assert.Equal(t, report.BuildID, e.BuildID)
	assert.Equal(t, "partial", e.Status)
	assert.Equal(t, []string{"index"}, e.Pages)
	assert.Equal(t, []string{"orphan"}, e.Failed)
	assert.Equal(t, site.OutputDir(), e.OutputDir)

	assert.Equal(t, 1, rec.pages[metrics.ResultSuccess])
	assert.Equal(t, 1, rec.pages[metrics.ResultFailed])
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomePartial}, rec.outcomes)
	assert.Equal(t, []string{"static", "layouts", "pages"}, rec.stages)
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	pub := &fakePublisher{}

	site := newBlogSite(t)
	report, err := NewBuilder(site.Config(), WithLogger(discard()), WithPublisher(pub)).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, metrics.BuildOutcomeCanceled, report.Outcome)
	assert.Empty(t, report.Pages)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "canceled", pub.events[0].Status)
	site.Output().AssertFileNotExists("index.html")
}

func TestBuildWithoutMarkdown(t *testing.T) {
	site := newBlogSite(t).With("markdown", map[string]any{"enabled": false})
	_, err := NewBuilder(site.Config(), WithLogger(discard())).Build(t.Context())
	require.NoError(t, err)
	site.Output().AssertPageContains("index", "Hello **world**")
}

func TestBuildConcurrentCallsSerialise(t *testing.T) {
	b := NewBuilder(newBlogSite(t).Config(), WithLogger(discard()))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = b.Build(t.Context())
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	_, err := os.Stat(filepath.Join(b.Config().OutputDir, "index.html"))
	assert.NoError(t, err)
}
