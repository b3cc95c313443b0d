// Package progress defines the event stream emitted by the build
// pipeline, most importantly by the image resolution workers. The CLI
// consumes the stream through sinks instead of callbacks so the batch
// logic stays decoupled from presentation.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart     Stage = "RUN_START"
	StageRunDone      Stage = "RUN_DONE"
	StageResolveStart Stage = "RESOLVE_START"
	StageResolveDone  Stage = "RESOLVE_DONE"
	StageResolveError Stage = "RESOLVE_ERROR"
)

// Tier identifies which step of the image fallback chain produced a
// resolution.
type Tier string

// Fallback tiers, in chain order. TierDefault is the terminal step that
// cannot fail.
const (
	TierDeclared    Tier = "declared"
	TierAlternate   Tier = "alternate"
	TierGenerated   Tier = "generated"
	TierPlaceholder Tier = "placeholder"
	TierDefault     Tier = "default"
)

// Tiers lists every fallback tier in chain order, for summaries.
var Tiers = []Tier{TierDeclared, TierAlternate, TierGenerated, TierPlaceholder, TierDefault}

// Event captures a single milestone of build progress.
type Event struct {
	// RunID uniquely identifies one build run.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle or resolution milestone occurred.
	Stage Stage
	// City scopes resolution events to a city slug.
	City string
	// Listing is the slug of the listing being resolved.
	Listing string
	// URL is the resolved image URL, set on RESOLVE_DONE.
	URL string
	// Tier records the fallback tier that satisfied the resolution.
	Tier Tier
	// Current and Total report batch position (current/total).
	Current int
	Total   int
	// Dur captures execution latency for completed resolutions.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageResolveStart, StageResolveError:
		if e.Listing == "" {
			return fmt.Errorf("%s requires listing", e.Stage)
		}
	case StageResolveDone:
		if e.Listing == "" {
			return errors.New("resolve done requires listing")
		}
		if e.Tier == "" {
			return errors.New("resolve done requires tier")
		}
		if e.URL == "" {
			return errors.New("resolve done requires url")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
