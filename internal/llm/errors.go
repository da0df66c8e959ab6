package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindRateLimit       ErrorKind = "rate_limit"
	KindUnavailable     ErrorKind = "unavailable"
	KindAuth            ErrorKind = "auth"
	KindBadRequest      ErrorKind = "bad_request"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindTruncated       ErrorKind = "truncated"
)

// ProviderError is returned for every failed upstream call. Detail carries
// the upstream message so callers can surface it unchanged.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	RetryAfter time.Duration
	Detail     string

	// Content is the offending output for invalid or truncated responses.
	Content string

	Err error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (%s, HTTP %d): %s", e.Provider, e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s provider error (%s): %s", e.Provider, e.Kind, e.Detail)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsKind reports whether err is a ProviderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == kind
}

// classifyStatus maps an upstream HTTP status to an ErrorKind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status >= 500:
		return KindUnavailable
	case status >= 400:
		return KindBadRequest
	default:
		return KindUnavailable
	}
}

// upstreamError builds a ProviderError from a transport or API failure.
// A zero status means the request never got an HTTP answer.
func upstreamError(provider string, status int, err error) *ProviderError {
	kind := KindUnavailable
	if status != 0 {
		kind = classifyStatus(status)
	}
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return &ProviderError{
		Provider:   provider,
		Kind:       kind,
		StatusCode: status,
		Detail:     detail,
		Err:        err,
	}
}

func invalidResponse(provider, content string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     KindInvalidResponse,
		Detail:   err.Error(),
		Content:  content,
		Err:      err,
	}
}
