package workflow

import "github.com/xkilldash9x/fleetimport/internal/browser"

// Outcome tags the result of attempting one workflow step.
type Outcome string

const (
	// OutcomeAdvanced marks a successful step.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeSkipped marks a non-fatal miss; the workflow proceeds degraded.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeStopped marks a fatal step; it terminates the run.
	OutcomeStopped Outcome = "stopped"
)

// StepRecord is one entry in the navigation trace. Selector and Context are
// filled on advanced steps for diagnostics.
type StepRecord struct {
	Step     string  `json:"step"`
	Outcome  Outcome `json:"outcome"`
	Selector string  `json:"selector,omitempty"`
	Context  string  `json:"context,omitempty"`
	Detail   string  `json:"detail,omitempty"`
}

// Trace is the append-only, insertion-ordered record of step outcomes for one
// run. It exists for reporting only: the state machine never consults it to
// decide the next step.
type Trace struct {
	records []StepRecord
}

// Advanced appends a successful step, annotated with the winning locator.
func (t *Trace) Advanced(step string, m *browser.Match, detail string) {
	rec := StepRecord{Step: step, Outcome: OutcomeAdvanced, Detail: detail}
	if m != nil {
		rec.Selector = m.Selector
		rec.Context = m.Context
	}
	t.records = append(t.records, rec)
}

// Skipped appends a soft miss.
func (t *Trace) Skipped(step, detail string) {
	t.records = append(t.records, StepRecord{
		Step: step, Outcome: OutcomeSkipped, Detail: detail,
	})
}

// Stopped appends a fatal step.
func (t *Trace) Stopped(step, detail string) {
	t.records = append(t.records, StepRecord{
		Step: step, Outcome: OutcomeStopped, Detail: detail,
	})
}

// Records returns the accumulated entries in insertion order.
func (t *Trace) Records() []StepRecord {
	return t.records
}
