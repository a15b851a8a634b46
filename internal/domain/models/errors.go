package models

import "fmt"

// InvalidInputError is returned when the analysis input cannot be parsed for
// its declared type. It is the only failure the pipeline surfaces to callers.
type InvalidInputError struct {
	Type   InputType
	Input  string
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s input %q: %s: %v", e.Type, e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s input %q: %s", e.Type, e.Input, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}
