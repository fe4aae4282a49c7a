package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dojang-data/kick.report/internal/config"
	"github.com/dojang-data/kick.report/internal/pose"
	"github.com/dojang-data/kick.report/internal/pose/l4phases"
)

// ErrStreamClosed is returned by Ingest after Close.
var ErrStreamClosed = errors.New("stream closed")

// StreamAnalyzer runs an Analyzer behind a bounded ingest queue so a
// live capture source never blocks on analysis. When the queue is full
// the oldest queued frame is dropped; analysis quality degrades
// gracefully instead of the capture loop stalling.
//
// Usage: start Run in its own goroutine, Ingest frames from the
// capture loop, Close when the source ends, then read Result after Run
// returns. Ingest and Close must be called from the same goroutine.
type StreamAnalyzer struct {
	a  *Analyzer
	in chan pose.Frame

	onKick func(*l4phases.KickInstance)

	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
}

// NewStream wraps a fresh Analyzer for live ingest. onKick, if
// non-nil, is invoked from the Run goroutine for every completed kick.
func NewStream(cfg *config.TuningConfig, fps float64, onKick func(*l4phases.KickInstance)) (*StreamAnalyzer, error) {
	a, err := New(cfg, fps)
	if err != nil {
		return nil, err
	}
	depth := a.cfg.GetIngestQueueDepth()
	return &StreamAnalyzer{
		a:      a,
		in:     make(chan pose.Frame, depth),
		onKick: onKick,
	}, nil
}

// Ingest queues one frame without blocking. If the queue is full the
// oldest queued frame is dropped to make room; the gap it leaves is
// handled by the analyzer's gap detection. Returns ErrStreamClosed
// after Close.
func (s *StreamAnalyzer) Ingest(f pose.Frame) error {
	if s.closed.Load() {
		return ErrStreamClosed
	}
	for {
		select {
		case s.in <- f:
			return nil
		default:
		}
		select {
		case <-s.in:
			if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
				pose.Diagf("[pipeline] ingest queue full, dropped %d frames total", n)
			}
		default:
		}
	}
}

// Close stops ingest. Run drains the frames already queued, flushes
// the analyzer and returns.
func (s *StreamAnalyzer) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.in)
	})
}

// Run consumes queued frames until Close or context cancellation.
// On cancellation any in-flight kick is aborted rather than emitted
// half-built; on Close the analyzer is flushed so a kick caught
// mid-retraction still completes.
func (s *StreamAnalyzer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.a.machine.Abort("stream cancelled")
			return ctx.Err()
		case f, ok := <-s.in:
			if !ok {
				s.a.Flush()
				return nil
			}
			inst, err := s.a.Process(f)
			if err != nil {
				return err
			}
			if inst != nil && s.onKick != nil {
				s.onKick(inst)
			}
		}
	}
}

// Dropped reports how many frames have been discarded by queue
// overflow so far.
func (s *StreamAnalyzer) Dropped() int64 { return s.dropped.Load() }

// Result assembles the report. Only call after Run has returned.
func (s *StreamAnalyzer) Result() *AnalysisResult { return s.a.Result() }
