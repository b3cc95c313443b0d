package images

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/directory"
	"github.com/artappraisal/sitegen/internal/progress"
)

// collectEmitter records every event it sees.
type collectEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (e *collectEmitter) Emit(evt progress.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
}

func (e *collectEmitter) Events() []progress.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]progress.Event(nil), e.events...)
}

// gaugeProber tracks the peak number of concurrent probes.
type gaugeProber struct {
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (p *gaugeProber) Probe(context.Context, string) error {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

func batchLocations(cities, perCity int) []directory.LocationRecord {
	locations := make([]directory.LocationRecord, 0, cities)
	for c := 0; c < cities; c++ {
		loc := directory.LocationRecord{CitySlug: string(rune('a' + c))}
		for g := 0; g < perCity; g++ {
			loc.Listings = append(loc.Listings, directory.ListingRecord{
				Slug:     loc.CitySlug + "-listing-" + string(rune('0'+g)),
				Name:     "Listing",
				ImageURL: "https://img.example.com/" + loc.CitySlug + string(rune('0'+g)) + ".jpg",
			})
		}
		locations = append(locations, loc)
	}
	return locations
}

// TestResolveAllResolvesEveryListing checks every record ends with a
// non-empty ResolvedImage and completion events cover the whole batch.
func TestResolveAllResolvesEveryListing(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	cache := NewCache(NewMemoryStore(), time.Hour, clk, zap.NewNop())
	resolver := NewResolver(testConfig(), cache, &gaugeProber{}, nil, zap.NewNop())
	emitter := &collectEmitter{}
	batch := NewBatch(resolver, clk, emitter, 4)

	locations := batchLocations(3, 4)
	batch.ResolveAll(context.Background(), uuid.New(), locations)

	for _, loc := range locations {
		for _, listing := range loc.Listings {
			assert.NotEmpty(t, listing.ResolvedImage, "listing %s", listing.Slug)
		}
	}

	done, failed := 0, 0
	for _, evt := range emitter.Events() {
		switch evt.Stage {
		case progress.StageResolveDone:
			done++
			assert.Equal(t, 12, evt.Total)
			assert.NotEmpty(t, evt.URL)
		case progress.StageResolveError:
			failed++
		}
	}
	assert.Equal(t, 12, done)
	assert.Zero(t, failed, "successful resolutions must not report errors")
}

// TestResolveAllEmitsErrorOnFallthrough: a listing that exhausts every
// probing tier and lands on the global default is reported as a
// resolution error alongside its completion event.
func TestResolveAllEmitsErrorOnFallthrough(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	cache := NewCache(NewMemoryStore(), time.Hour, clk, zap.NewNop())
	resolver := NewResolver(testConfig(), cache, newFakeProber(), nil, zap.NewNop())
	emitter := &collectEmitter{}
	batch := NewBatch(resolver, clk, emitter, 2)

	batch.ResolveAll(context.Background(), uuid.New(), batchLocations(1, 2))

	done, failed := 0, 0
	for _, evt := range emitter.Events() {
		switch evt.Stage {
		case progress.StageResolveDone:
			done++
			assert.Equal(t, progress.TierDefault, evt.Tier)
		case progress.StageResolveError:
			failed++
			assert.NotEmpty(t, evt.Listing)
			assert.NotEmpty(t, evt.Note)
		}
	}
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, failed)
}

// TestResolveAllBoundsConcurrency asserts the semaphore caps in-flight
// probes at the configured pool size.
func TestResolveAllBoundsConcurrency(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	prober := &gaugeProber{}
	cache := NewCache(NewMemoryStore(), time.Hour, clk, zap.NewNop())
	resolver := NewResolver(testConfig(), cache, prober, nil, zap.NewNop())
	batch := NewBatch(resolver, clk, nil, 3)

	batch.ResolveAll(context.Background(), uuid.New(), batchLocations(4, 5))

	require.LessOrEqual(t, prober.peak.Load(), int64(3),
		"in-flight probes must never exceed the pool size")
}

// TestResolveAllEmptyBatch is a no-op, not a hang.
func TestResolveAllEmptyBatch(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	cache := NewCache(NewMemoryStore(), time.Hour, clk, zap.NewNop())
	resolver := NewResolver(testConfig(), cache, &gaugeProber{}, nil, zap.NewNop())
	batch := NewBatch(resolver, clk, nil, 4)

	batch.ResolveAll(context.Background(), uuid.New(), nil)
}
