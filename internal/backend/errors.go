package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrNotFound matches backend 404 responses.
	ErrNotFound = errors.New("backend: not found")
	// ErrUnauthorized matches backend 401 responses.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrForbidden matches backend 403 responses.
	ErrForbidden = errors.New("backend: forbidden")
	// ErrBadRequest matches backend 400 and 422 responses.
	ErrBadRequest = errors.New("backend: bad request")
)

// Error is a non-success response from the marketplace API.
type Error struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: error (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend: error (%d): %s", e.Status, e.Message)
}

// Is lets callers match on the sentinel errors above.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// Detail returns the backend message with markup stripped, suitable for a notice.
func Detail(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return ""
	}
	return apiErr.Message
}

var detailPolicy = bluemonday.StrictPolicy()

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	apiErr := &Error{Status: resp.StatusCode}

	type errorPayload struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	var payload errorPayload
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		apiErr.Code = strings.TrimSpace(payload.Code)
		apiErr.Message = payload.Message
		if apiErr.Message == "" && len(payload.Detail) > 0 {
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				apiErr.Message = detail
			} else {
				// Validation failures carry a list of field errors.
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
	}
	if apiErr.Message == "" {
		if len(body) > 0 && !json.Valid(body) {
			apiErr.Message = strings.TrimSpace(string(body))
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	apiErr.Message = strings.TrimSpace(detailPolicy.Sanitize(apiErr.Message))
	return apiErr
}
