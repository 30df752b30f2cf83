package llm

import "fmt"

// APICallError represents a failed request to the provider (quota, network, rejected prompt)
type APICallError struct {
	Model string
	Cause error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("generate with %s: %v", e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
