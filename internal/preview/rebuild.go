package preview

import (
	"context"
	"time"

	"git.home.luguber.info/inful/makesite/internal/logfields"
	"git.home.luguber.info/inful/makesite/internal/site"
)

// trigger schedules a rebuild once no change has arrived for the debounce period.
func (s *Server) trigger() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, s.requestRebuild)
}

func (s *Server) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// requestRebuild queues one rebuild. A request made while a build runs stays
// in the buffer and runs once afterwards; further requests are dropped.
func (s *Server) requestRebuild() {
	select {
	case s.rebuildReq <- struct{}{}:
	default:
	}
}

// rebuildWorker runs queued rebuilds one at a time until ctx is done.
func (s *Server) rebuildWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rebuildReq:
			s.logger.Info("Change detected; rebuilding site")
			s.rebuild(ctx, site.TriggerWatch)
		}
	}
}

func (s *Server) rebuild(ctx context.Context, trigger string) {
	report, err := s.builder.Rebuild(ctx, trigger)
	s.status.record(report, err)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn("Rebuild failed", logfields.Error(err))
	}
	if report != nil {
		state := report.BuildID
		if err != nil {
			state = "error:" + state
		}
		s.hub.broadcast(state)
	}
}
