package sinks

import (
	"context"
	"sync"

	"github.com/artappraisal/sitegen/internal/progress"
)

// Stats is the aggregate view of one build run's resolution progress,
// consumed by the CLI to print the final summary.
type Stats struct {
	Resolved int
	Errors   int
	ByTier   map[progress.Tier]int
}

// StatsSink aggregates per-tier resolution counts in memory. It is safe
// for concurrent Consume calls.
type StatsSink struct {
	mu     sync.Mutex
	byTier map[progress.Tier]int
	errors int
}

// NewStatsSink returns an empty aggregator.
func NewStatsSink() *StatsSink {
	return &StatsSink{byTier: make(map[progress.Tier]int)}
}

// Consume tallies resolution completions and fall-through errors.
func (s *StatsSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageResolveDone:
			s.byTier[evt.Tier]++
		case progress.StageResolveError:
			s.errors++
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *StatsSink) Close(context.Context) error {
	return nil
}

// Snapshot returns a copy of the aggregated counts.
func (s *StatsSink) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Stats{
		Errors: s.errors,
		ByTier: make(map[progress.Tier]int, len(s.byTier)),
	}
	for tier, n := range s.byTier {
		out.ByTier[tier] = n
		out.Resolved += n
	}
	return out
}
