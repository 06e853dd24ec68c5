package crossquery

// Log field names used across the engine, so evaluations can be traced
// end to end from a single backend/evaluation pair.
const (
	// BackendLogField carries the backend identifier of an evaluation.
	BackendLogField = "backend"
	// EvaluationLogField carries the unique id of a materialize call.
	EvaluationLogField = "evaluation"
	// StateLogField carries the evaluation state after a transition.
	StateLogField = "state"
	// PlanLogField carries the fingerprint of the plan being evaluated.
	PlanLogField = "plan"
)
