package types

// GuardConfig represents the configuration for a guard
type GuardConfig struct {
	Name     string                 `json:"name"`
	Enabled  bool                   `json:"enabled"`
	Settings map[string]interface{} `json:"settings"`
}

// GuardError carries a block verdict out of a guard. Any other error
// returned by a guard is an execution failure, not a verdict.
type GuardError struct {
	Decision PermissionDecision
	Reason   string
	Err      error
}

func (e *GuardError) Error() string {
	return e.Reason
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

// GuardResponse reports a completed check that did not block
type GuardResponse struct {
	Message  string
	Metadata map[string]interface{}
}
