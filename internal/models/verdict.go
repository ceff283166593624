// Package models defines the documents exchanged with external collaborators
// and the verdict types produced by the validation pipeline.
package models

// Status represents the severity of a validation outcome.
type Status string

const (
	// StatusPass indicates all checks met their acceptance criteria.
	StatusPass Status = "PASS"
	// StatusWarn indicates degraded quality; the pipeline continues.
	StatusWarn Status = "WARN"
	// StatusCritical indicates a blocking failure; the pipeline halts.
	StatusCritical Status = "CRITICAL"
)

var statusRank = map[Status]int{
	StatusPass:     0,
	StatusWarn:     1,
	StatusCritical: 2,
}

func (s Status) String() string {
	return string(s)
}

// AtLeast returns true if s is at or above the target severity.
func (s Status) AtLeast(target Status) bool {
	return statusRank[s] >= statusRank[target]
}

// Worst returns the highest severity among the given statuses.
// An empty argument list yields StatusPass.
func Worst(statuses ...Status) Status {
	worst := StatusPass
	for _, s := range statuses {
		if statusRank[s] > statusRank[worst] {
			worst = s
		}
	}
	return worst
}

// ExitCode maps a status to the CLI exit-code contract: 0 PASS, 1 WARN, 2 CRITICAL.
func (s Status) ExitCode() int {
	return statusRank[s]
}

// Check holds the outcome of a single sub-check within a stage.
type Check struct {
	// Name is a stable check identifier used in output and downstream processing.
	Name string `json:"name"`
	// Passed indicates whether the check met its acceptance criteria.
	Passed bool `json:"passed"`
	// Status is StatusPass when the check passed, otherwise the severity of the failure.
	Status Status `json:"status"`
	// Message is a human-readable one-line result, empty when the check passed.
	Message string `json:"message,omitempty"`
	// Details carries an optional check-specific payload for structured consumers.
	Details map[string]any `json:"details,omitempty"`
}

// Verdict is the immutable result of one pipeline stage.
type Verdict struct {
	Stage    string   `json:"stage"`
	Status   Status   `json:"status"`
	Score    *float64 `json:"score"`
	Messages []string `json:"messages,omitempty"`
	// Checks enumerates every sub-check outcome so callers can report
	// specific remediation without re-deriving it.
	Checks  []Check        `json:"checks,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// NewVerdict creates a passing verdict for the named stage.
func NewVerdict(stage string) *Verdict {
	return &Verdict{Stage: stage, Status: StatusPass}
}

// Add records a sub-check and raises the verdict status to the worst
// severity among failed checks.
func (v *Verdict) Add(c Check) {
	if c.Passed {
		c.Status = StatusPass
	} else {
		if c.Status == "" {
			c.Status = StatusCritical
		}
		if c.Message != "" {
			v.Messages = append(v.Messages, c.Message)
		}
		v.Status = Worst(v.Status, c.Status)
	}
	v.Checks = append(v.Checks, c)
}

// Check returns the named sub-check, or nil if the stage did not record it.
func (v *Verdict) Check(name string) *Check {
	for i := range v.Checks {
		if v.Checks[i].Name == name {
			return &v.Checks[i]
		}
	}
	return nil
}

// Failed returns the sub-checks that did not pass.
func (v *Verdict) Failed() []Check {
	var failed []Check
	for _, c := range v.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// SetScore attaches a stage score to the verdict.
func (v *Verdict) SetScore(score float64) {
	v.Score = &score
}

// PipelineReport is the ordered log of stage verdicts for one run.
type PipelineReport struct {
	RunID    string    `json:"run_id"`
	Profile  string    `json:"profile"`
	Verdicts []Verdict `json:"verdicts"`
	// Halted is true once a CRITICAL verdict is recorded; no further stage executes.
	Halted     bool     `json:"halted"`
	FinalScore *float64 `json:"final_score"`
}

// Status reduces the report to the worst severity across all verdicts.
func (r *PipelineReport) Status() Status {
	statuses := make([]Status, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		statuses = append(statuses, v.Status)
	}
	return Worst(statuses...)
}

// ValidationResults is the externally visible output shape consumed by the
// orchestrating caller to decide publish / regenerate / reject.
type ValidationResults struct {
	Score     float64        `json:"score"`
	Passed    bool           `json:"passed"`
	Threshold float64        `json:"threshold"`
	Warnings  []string       `json:"warnings"`
	Details   map[string]any `json:"details,omitempty"`
}
