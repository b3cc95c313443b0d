package images

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/artappraisal/sitegen/internal/directory"
	"github.com/artappraisal/sitegen/internal/progress"
)

// Batch runs the resolver over every listing of a build with bounded
// concurrency, injecting the result into each record's ResolvedImage and
// streaming incremental progress through the emitter. Listings are
// embarrassingly parallel; no cross-listing ordering is promised.
type Batch struct {
	resolver    *Resolver
	clock       directory.Clock
	emitter     progress.Emitter
	concurrency int
}

// NewBatch constructs a Batch. A nil emitter discards progress.
func NewBatch(resolver *Resolver, clock directory.Clock, emitter progress.Emitter, concurrency int) *Batch {
	if emitter == nil {
		emitter = progress.Nop{}
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Batch{
		resolver:    resolver,
		clock:       clock,
		emitter:     emitter,
		concurrency: concurrency,
	}
}

// ResolveAll resolves images for every listing in place. The semaphore
// bounds in-flight probes so the image host is never hammered with the
// whole directory at once.
func (b *Batch) ResolveAll(ctx context.Context, runID uuid.UUID, locations []directory.LocationRecord) {
	total := 0
	for _, loc := range locations {
		total += len(loc.Listings)
	}
	if total == 0 {
		return
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		semaphore = make(chan struct{}, b.concurrency)
	)
	for li := range locations {
		loc := &locations[li]
		for gi := range loc.Listings {
			listing := &loc.Listings[gi]
			wg.Add(1)
			semaphore <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-semaphore }()
				b.resolveOne(ctx, runID, loc.CitySlug, listing, int(completed.Add(1)), total)
			}()
		}
	}
	wg.Wait()
}

func (b *Batch) resolveOne(
	ctx context.Context,
	runID uuid.UUID,
	citySlug string,
	listing *directory.ListingRecord,
	current int,
	total int,
) {
	b.emitter.Emit(progress.Event{
		RunID:   runID,
		TS:      b.clock.Now(),
		Stage:   progress.StageResolveStart,
		City:    citySlug,
		Listing: listing.Slug,
		Current: current,
		Total:   total,
	})

	start := b.clock.Now()
	resolution := b.resolver.Resolve(ctx, citySlug, *listing)
	listing.ResolvedImage = resolution.URL

	// Landing on the default tier after absorbing probe failures is a
	// resolution that effectively failed; surface it so error counts
	// and metrics reflect listings stuck on the global fallback.
	if resolution.Tier == progress.TierDefault && len(resolution.Notes) > 0 {
		b.emitter.Emit(progress.Event{
			RunID:   runID,
			TS:      b.clock.Now(),
			Stage:   progress.StageResolveError,
			City:    citySlug,
			Listing: listing.Slug,
			Current: current,
			Total:   total,
			Note:    resolution.Notes[len(resolution.Notes)-1],
		})
	}

	evt := progress.Event{
		RunID:   runID,
		TS:      b.clock.Now(),
		Stage:   progress.StageResolveDone,
		City:    citySlug,
		Listing: listing.Slug,
		URL:     resolution.URL,
		Tier:    resolution.Tier,
		Current: current,
		Total:   total,
		Dur:     b.clock.Now().Sub(start),
	}
	if len(resolution.Notes) > 0 {
		evt.Note = resolution.Notes[len(resolution.Notes)-1]
	}
	b.emitter.Emit(evt)
}
