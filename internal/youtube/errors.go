package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ytharvest/internal/services"
)

var transientReasons = map[string]struct{}{
	"quotaExceeded":         {},
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
	"dailyLimitExceeded":    {},
	"backendError":          {},
}

// APIError is a non-200 response from the Data API. It unwraps to the
// services marker that classifies it.
type APIError struct {
	Endpoint   string
	StatusCode int
	Reason     string
	Message    string
	marker     error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "youtube %s: status %d", e.Endpoint, e.StatusCode)
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.marker
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	apiErr := &APIError{Endpoint: endpoint, StatusCode: status}
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Error.Message)
		if len(payload.Error.Errors) > 0 {
			apiErr.Reason = payload.Error.Errors[0].Reason
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(http.StatusText(status))
	}
	apiErr.marker = classify(status, apiErr.Reason)
	return apiErr
}

func classify(status int, reason string) error {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return services.ErrTransient
	case status == http.StatusForbidden:
		if _, ok := transientReasons[reason]; ok {
			return services.ErrTransient
		}
		return services.ErrValidation
	case status == http.StatusNotFound:
		return services.ErrMissingResource
	default:
		return services.ErrValidation
	}
}
