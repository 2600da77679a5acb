package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrGenerationFailed is returned when the primary model fails for a reason
// other than rate limiting or quota.
var ErrGenerationFailed = errors.New("failed to generate grant proposal using AI")

// APIError is a non-2xx response from the chat completions endpoint.
type APIError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openai api error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("openai api error (status %d): %s", e.StatusCode, e.Message)
}

// IsQuotaError reports whether err is a rate-limit or exhausted-quota response.
func IsQuotaError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Code == "insufficient_quota"
}
