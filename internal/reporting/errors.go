package reporting

import "fmt"

// WriteError represents a failure to produce a report artifact.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to write report %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to write report %s: %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
