// Package quota bounds the number of outbound calls made to the tennis
// provider. A Counter is handed to the client explicitly; there is no
// package-level state.
package quota

import (
	"context"
	"time"

	"sportrate/tennis-ingestion/internal/apperr"
)

// ProviderDailyCeiling is the provider's published limit for our plan.
// QUOTA_MAX is normally configured well below it.
const ProviderDailyCeiling = 300

// Status is a snapshot of a counter
type Status struct {
	Used      int        `json:"used"`
	Max       int        `json:"max"`
	Remaining int        `json:"remaining"`
	ResetsAt  *time.Time `json:"resets_at,omitempty"`
}

// Counter hands out request units up to a maximum
type Counter interface {
	// Take consumes one unit. It fails with apperr.KindQuotaExceeded, without
	// consuming, once the maximum has been reached.
	Take(ctx context.Context) (Status, error)
	// Status reports usage without consuming
	Status(ctx context.Context) (Status, error)
}

func newStatus(used, max int, resetsAt *time.Time) Status {
	remaining := max - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{Used: used, Max: max, Remaining: remaining, ResetsAt: resetsAt}
}

func exceeded(st Status) error {
	return apperr.Newf(apperr.KindQuotaExceeded, "tennis API quota exhausted: %d/%d requests used", st.Used, st.Max)
}

// windowBounds returns the start and end of the fixed window containing t
func windowBounds(t time.Time, window time.Duration) (time.Time, time.Time) {
	start := t.UTC().Truncate(window)
	return start, start.Add(window)
}
