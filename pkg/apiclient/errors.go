package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind says how far a request got before it failed.
type Kind int

const (
	KindUnknown    Kind = iota
	KindResponse        // the server answered with a non-2xx status
	KindNoResponse      // the request was sent but nothing came back
	KindSetup           // the request could not be built
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindNoResponse:
		return "no_response"
	case KindSetup:
		return "setup"
	default:
		return "unknown"
	}
}

// ResponseError is a non-2xx answer. Message comes from the body's
// "detail" or "error" field when present.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// NetworkError means no response was received (offline, refused, timeout).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SetupError means the request never left the client.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return "request setup: " + e.Err.Error()
}

func (e *SetupError) Unwrap() error { return e.Err }

func newResponseError(method, url string, status int, body []byte) *ResponseError {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Detail
		if msg == "" {
			msg = payload.Error
		}
	}
	return &ResponseError{Method: method, URL: url, StatusCode: status, Body: body, Message: msg}
}

// Classify maps any error returned by Client to its Kind.
func Classify(err error) Kind {
	var (
		respErr  *ResponseError
		netErr   *NetworkError
		setupErr *SetupError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &respErr):
		return KindResponse
	case errors.As(err, &netErr):
		return KindNoResponse
	case errors.As(err, &setupErr):
		return KindSetup
	default:
		return KindUnknown
	}
}

// IsOffline reports whether err means the API could not be reached.
func IsOffline(err error) bool {
	return Classify(err) == KindNoResponse
}

// IsNotFound reports a 404 answer.
func IsNotFound(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status of a ResponseError, or 0.
func StatusCode(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}
