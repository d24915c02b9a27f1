package xsd

import "fmt"

// ParseError indicates a schema document could not be read as XML.
type ParseError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse schema %s: %s", e.Schema, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// EmptySchemaError indicates a well-formed document that declares no
// top-level element, so there is nothing to resolve.
type EmptySchemaError struct {
	Schema string
}

func (e *EmptySchemaError) Error() string {
	return fmt.Sprintf("schema %s declares no top-level element", e.Schema)
}

// RecursionError indicates resolution exceeded the configured depth bound
// before reaching the bottom of the type hierarchy.
type RecursionError struct {
	Schema string
	Path   string
	Depth  int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("schema %s: recursion limit %d exceeded at %s", e.Schema, e.Depth, e.Path)
}
