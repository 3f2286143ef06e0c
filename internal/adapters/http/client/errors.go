package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"
)

// Sentinel error kinds. Concrete failures match them through errors.Is.
var (
	ErrMissingBaseURL = errors.New("api base url is not configured")
	ErrInvalidBaseURL = errors.New("api base url is invalid")
	ErrHTTP           = errors.New("backend returned an error status")
	ErrNotFound       = errors.New("resource not found")
	ErrNetwork        = errors.New("backend unreachable")
	ErrDecode         = errors.New("decode response failed")
	ErrEncode         = errors.New("encode request failed")
)

// HTTPError is a non-2xx backend response. Body is kept verbatim.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Message    string
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	return &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
		Message:    backendMessage(body),
	}
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fasthttp.StatusMessage(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is matches ErrHTTP, and ErrNotFound for 404 responses.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrHTTP:
		return true
	case ErrNotFound:
		return e.StatusCode == fasthttp.StatusNotFound
	}
	return false
}

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// errorKind labels err for logs and metrics.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHTTP):
		return "http"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEncode):
		return "encode"
	default:
		return "other"
	}
}

// backendMessage extracts "message" from NestJS-style error bodies:
// {"statusCode":400,"message":["nim should not be empty"],"error":"Bad Request"}.
func backendMessage(body []byte) string {
	var eb struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return ""
	}

	var one string
	if json.Unmarshal(eb.Message, &one) == nil && one != "" {
		return one
	}
	var many []string
	if json.Unmarshal(eb.Message, &many) == nil && len(many) > 0 {
		return strings.Join(many, "; ")
	}
	return eb.Error
}
