package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrNoop(t *testing.T) {
	assert.Equal(t, NoopRecorder{}, OrNoop(nil))

	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration("static", time.Second)
		r.ObservePageDuration("index", time.Second)
		r.IncPageResult("index", ResultSuccess)
		r.ObserveBuildDuration(time.Second)
		r.IncBuildOutcome(BuildOutcomeSuccess)
		r.ObserveListItems("news", 1)
		r.IncMarkupFallback()
	})
}
