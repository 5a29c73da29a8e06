package weberr

import (
	"net/http"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequestError wraps the cause of a failed request. The cause is logged,
// never sent.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// NewError answers the request with msg and status while err keeps the
// details for the logs.
func NewError(err error, msg string, status int, opts ...Opt) error {
	opts = append(opts, WithResponse(&ErrorResponse{Error: msg}, status))
	return Wrap(&RequestError{Err: err}, opts...)
}

// Expose answers with err's own message. Use it only for errors whose text
// is meant for the client, such as domain sentinels.
func Expose(err error, status int, opts ...Opt) error {
	return NewError(err, err.Error(), status, opts...)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(err, "not authorized to access resource", http.StatusUnauthorized, opts...)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(err, "bad request", http.StatusBadRequest, opts...)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(err, "too many requests, try again later", http.StatusTooManyRequests, opts...)
}
