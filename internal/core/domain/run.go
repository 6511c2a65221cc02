package domain

import "time"

// RunState is the lifecycle of one sync run.
// Transitions: Idle -> Running -> {Completed, StoppedOnError}.
type RunState string

const (
	RunIdle           RunState = "idle"
	RunRunning        RunState = "running"
	RunCompleted      RunState = "completed"
	RunStoppedOnError RunState = "stopped-on-error"
)

// RunFailure identifies exactly which item triggered an early stop and why,
// so a follow-up run can target only the unresolved remainder.
type RunFailure struct {
	Identity Identity  `json:"identity"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// RunCounts tallies enrichment outcomes for a run.
type RunCounts struct {
	Success     int `json:"success"`
	Partial     int `json:"partial"`
	HardFailure int `json:"hardFailure"`
}

// SyncRun is the persisted state of one enrichment run. Persisting the
// attempted set and the succeeded records makes a follow-up run a pure
// continuation instead of a manual re-derivation of what is left.
type SyncRun struct {
	ID         string    `json:"id"`
	State      RunState  `json:"state"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`

	// Attempted is the set of identities this run has issued an
	// enrichment request for, keyed by canonical identity string.
	Attempted map[string]bool `json:"attempted"`

	// Succeeded maps canonical identity strings to their usable records
	// (success or partial outcomes).
	Succeeded map[string]EnrichmentRecord `json:"succeeded"`

	// LastFailure is set when the run stopped on a hard failure.
	LastFailure *RunFailure `json:"lastFailure,omitempty"`

	Counts RunCounts `json:"counts"`
}

// NewSyncRun creates a run in the Idle state.
func NewSyncRun(id string) *SyncRun {
	return &SyncRun{
		ID:        id,
		State:     RunIdle,
		Attempted: make(map[string]bool),
		Succeeded: make(map[string]EnrichmentRecord),
	}
}

// Start transitions the run to Running.
func (r *SyncRun) Start(now time.Time) {
	r.State = RunRunning
	if r.StartedAt.IsZero() {
		r.StartedAt = now
	}
}

// MarkAttempted records that an enrichment request was issued for id.
func (r *SyncRun) MarkAttempted(id Identity) {
	if r.Attempted == nil {
		r.Attempted = make(map[string]bool)
	}
	r.Attempted[id.String()] = true
}

// MarkSucceeded records a usable enrichment record and updates counters.
func (r *SyncRun) MarkSucceeded(rec EnrichmentRecord) {
	if r.Succeeded == nil {
		r.Succeeded = make(map[string]EnrichmentRecord)
	}
	r.Succeeded[rec.Identity.String()] = rec
	switch rec.Outcome {
	case OutcomeSuccess:
		r.Counts.Success++
	case OutcomePartial:
		r.Counts.Partial++
	}
}

// Stop transitions the run to StoppedOnError, retaining everything
// obtained so far.
func (r *SyncRun) Stop(failure RunFailure, now time.Time) {
	r.State = RunStoppedOnError
	r.LastFailure = &failure
	r.FinishedAt = now
	r.Counts.HardFailure++
}

// Complete transitions the run to Completed.
func (r *SyncRun) Complete(now time.Time) {
	r.State = RunCompleted
	r.FinishedAt = now
}

// Resumable reports whether the run stopped early and still has an
// unresolved remainder a continuation can pick up.
func (r *SyncRun) Resumable() bool {
	return r.State == RunStoppedOnError
}

// Remaining filters items down to those this run has not successfully
// enriched: never-attempted items plus the item that triggered the stop.
func (r *SyncRun) Remaining(items []CatalogItem) []CatalogItem {
	var rest []CatalogItem
	for _, item := range items {
		key := item.Identity.String()
		if _, ok := r.Succeeded[key]; ok {
			continue
		}
		rest = append(rest, item)
	}
	return rest
}
