// Package progress defines the observability events emitted by the crawl
// engine and the sink capability that consumes them. The engine owns no
// process-wide logger or registry; callers inject whichever sinks they want.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the kind of milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageRunStart    Stage = "RUN_START"
	StageIteration   Stage = "ITERATION"
	StagePageError   Stage = "PAGE_ERROR"
	StageRunDone     Stage = "RUN_DONE"
	StageRecordsDone Stage = "RECORDS_DONE"
)

// Event captures one progress milestone of a crawl run.
type Event struct {
	// RunID identifies the crawl run the event belongs to.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Href scopes page-level events to a catalog link.
	Href string
	// Iteration is the frontier round the event belongs to, starting at 1.
	Iteration int
	// Leaves is the cumulative count of discovered leaf links.
	Leaves int
	// Pending counts links awaiting expansion in the next round.
	Pending int
	// Failed counts links that failed during the reported round.
	Failed int
	// Records counts extracted records for RECORDS_DONE events.
	Records int
	// Dur captures run latency for terminal events.
	Dur time.Duration
	// Note carries low-volume context such as error text.
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
	case StageRunStart, StageRunDone, StageRecordsDone:
	case StageIteration:
		if e.Iteration <= 0 {
			return errors.New("iteration events require a positive iteration")
		}
	case StagePageError:
		if e.Href == "" {
			return errors.New("page error events require an href")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
