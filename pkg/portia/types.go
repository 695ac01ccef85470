package portia

import "encoding/json"

// PlanRunState is the lifecycle state of a plan run on the platform.
type PlanRunState string

const (
	StateNotStarted        PlanRunState = "NOT_STARTED"
	StateInProgress        PlanRunState = "IN_PROGRESS"
	StateNeedClarification PlanRunState = "NEED_CLARIFICATION"
	StateReadyToResume     PlanRunState = "READY_TO_RESUME"
	StateComplete          PlanRunState = "COMPLETE"
	StateFailed            PlanRunState = "FAILED"
)

// Terminal reports whether the run will make no further progress.
func (s PlanRunState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Plan is a generated execution plan.
type Plan struct {
	ID    string     `json:"id"`
	Query string     `json:"query"`
	Steps []PlanStep `json:"steps"`
}

// PlanStep is a single step of a generated plan. Steps are informational
// on this side of the API; the platform executes them.
type PlanStep struct {
	Task   string `json:"task"`
	Tool   string `json:"tool_id,omitempty"`
	Output string `json:"output,omitempty"`
}

// PlanRun is the execution of a plan.
type PlanRun struct {
	ID      string       `json:"id"`
	PlanID  string       `json:"plan_id"`
	State   PlanRunState `json:"state"`
	Outputs RunOutputs   `json:"outputs"`
}

// RunOutputs carries the run's outputs. FinalOutput is only meaningful
// once the run reaches COMPLETE.
type RunOutputs struct {
	FinalOutput FinalOutput `json:"final_output"`
}

// FinalOutput wraps the run's structured final value.
type FinalOutput struct {
	Value json.RawMessage `json:"value"`
}

// planRequest is the body for plan creation.
type planRequest struct {
	Query string `json:"query"`
}

// runRequest is the body for plan run creation. StructuredOutputSchema
// asks the platform to coerce the final output into the given JSON
// schema.
type runRequest struct {
	PlanID                 string         `json:"plan_id"`
	StructuredOutputSchema map[string]any `json:"structured_output_schema,omitempty"`
}

// apiError is the platform's error envelope.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
