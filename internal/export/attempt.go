// Package export coordinates building and sending listing documents to
// the syndication network, retrying transient failures up to a bound and
// alerting admins when the bound is exhausted.
package export

import (
	"time"
)

// State is the terminal (or handed-off) state of one export attempt.
type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateRetrying  State = "retrying"  // handed to the retry scheduler
	StateExhausted State = "exhausted" // retry budget spent, admins notified
	StateNotFound  State = "not_found" // property no longer resolves; never retried
	StateInvalid   State = "invalid"   // document validation failed; never retried
)

// Attempt is the ephemeral record of one orchestration call. It is scoped
// to the lifetime of the call plus its scheduled retries and is not
// persisted as a first-class collection.
type Attempt struct {
	ID             string // correlation id shared with logs and the document archive
	PropertyID     int64
	AttemptNumber  int // starts at 1
	State          State
	ResponseStatus int    // last HTTP status from the export endpoint, 0 if never reached
	ResponseBody   string // last response body or error detail, for diagnostics
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Terminal reports whether the attempt chain ends here (no retry pending).
func (a *Attempt) Terminal() bool {
	return a.State != StatePending && a.State != StateRetrying
}
