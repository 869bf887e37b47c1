package preview

import (
	"sync"

	"git.home.luguber.info/inful/makesite/internal/site"
)

// StatusResponse is the JSON body of the build status endpoint.
type StatusResponse struct {
	BuildID      string   `json:"build_id,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
	Pages        []string `json:"pages,omitempty"`
	Failed       []string `json:"failed,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
	Builds       int      `json:"builds"`
	HasGoodBuild bool     `json:"has_good_build"`
}

// buildStatus tracks the latest build for the status endpoint.
type buildStatus struct {
	mu           sync.RWMutex
	report       *site.Report
	lastError    error
	hasGoodBuild bool
	builds       int
}

type statusSnapshot struct {
	response StatusResponse
	err      error
}

func (bs *buildStatus) record(report *site.Report, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.report = report
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) snapshot() statusSnapshot {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	resp := StatusResponse{Builds: bs.builds, HasGoodBuild: bs.hasGoodBuild}
	if r := bs.report; r != nil {
		resp.BuildID = r.BuildID
		resp.Outcome = string(r.Outcome)
		resp.Pages = r.Slugs()
		resp.Failed = r.FailedSlugs()
		resp.DurationMS = r.Duration.Milliseconds()
	}
	return statusSnapshot{response: resp, err: bs.lastError}
}
