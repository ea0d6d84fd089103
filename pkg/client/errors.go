package client

import "fmt"

// NetworkError wraps a transport failure where no HTTP response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response surfaced to the caller.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// RefreshError indicates the token refresh protocol itself failed. The session
// is already cleared by the time callers see this.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a response that did not match the expected
// schema, validated at the boundary instead of propagating missing fields.
type MalformedResponseError struct {
	Path   string
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Path, e.Detail)
}
