// Package llm builds the title optimization prompt and relays it to a
// chat-completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// NoResponseText replaces a completion that came back without content.
const NoResponseText = "No response received."

// TitleRequest is one form submission. Only Title is expected to be non-empty.
type TitleRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Keywords string `json:"keywords"`
}

// Completion is the raw text returned by the model, used verbatim.
type Completion struct {
	Text string
	// Empty reports that the upstream returned no content and Text holds
	// NoResponseText.
	Empty bool
}

// Completer turns a TitleRequest into a completion with a single upstream call.
type Completer interface {
	Complete(ctx context.Context, req TitleRequest) (*Completion, error)
}

// APIError is a non-2xx response from the completion API.
type APIError struct {
	StatusCode int
	// Message is the upstream error.message field, empty when the body had none.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

// UserMessage flattens any Complete error into the text shown to the user:
// the upstream error.message when there is one, the error text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
