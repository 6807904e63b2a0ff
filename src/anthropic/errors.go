package anthropic

import "fmt"

// APIError is a non-2xx response from the Messages endpoint.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("anthropic api error %d (%s): %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("anthropic api error %d: %s", e.Status, e.Message)
}
