package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "makesite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	stageDuration  *prom.HistogramVec
	pageDuration   *prom.HistogramVec
	pageResults    *prom.CounterVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	listItems      *prom.GaugeVec
	markupFallback prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of build stages (static copy, layouts, pages)",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.pageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time to compose and write one page",
			Buckets:   prom.DefBuckets,
		}, []string{"page"})
		pr.pageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_results_total",
			Help:      "Page build results by outcome",
		}, []string{"page", "result"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.listItems = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "list_items",
			Help:      "Number of items in the last aggregation of each list",
		}, []string{"list"})
		pr.markupFallback = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "markup_fallback_total",
			Help:      "Markdown bodies passed through unconverted",
		})
		reg.MustRegister(pr.stageDuration, pr.pageDuration, pr.pageResults, pr.buildDuration, pr.buildOutcome, pr.listItems, pr.markupFallback)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePageDuration(page string, d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.WithLabelValues(page).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(page string, result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(page, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveListItems(list string, n int) {
	if p == nil || p.listItems == nil {
		return
	}
	p.listItems.WithLabelValues(list).Set(float64(n))
}

func (p *PrometheusRecorder) IncMarkupFallback() {
	if p == nil || p.markupFallback == nil {
		return
	}
	p.markupFallback.Inc()
}
