package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FallbackMessage is shown when a failure carries no server-provided text.
const FallbackMessage = "Failed to load products"

// ErrProductNotFound is returned when a product slug does not resolve.
var ErrProductNotFound = errors.New("product not found")

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 8 << 10

// APIError is a non-2xx response from the catalog.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrProductNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrProductNotFound && e.StatusCode == http.StatusNotFound
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    errorMessage(resp.StatusCode, body),
	}
}

// errorMessage prefers a JSON "detail" field, then the raw body, then HTTP <code>.
func errorMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d", status)
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && detail != "" {
			return detail
		}

		// Validation errors carry a list of objects with a "msg" field.
		var items []struct {
			Msg string `json:"msg"`
		}

		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}

			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	return text
}

// UserMessage turns a fetch error into the text shown in an error banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FallbackMessage + ": request timed out"
	}

	return FallbackMessage
}
