package advisor

import "fmt"

// ValidationError reports malformed caller input. It is raised before
// any external call is made and names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GatewayError wraps a failed external model call: timeout, auth
// failure, rate limit, or a malformed transport response. The model is
// called at most once per operation; retry policy belongs to callers.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: model call failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
