// Package weberr decorates errors with the HTTP response they should produce
// and with extra fields for the request log.
package weberr

import (
	"errors"
	"net/http"
)

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body any, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

func WithFields(fields map[string]any) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

type responder interface {
	Response() (body any, status int)
}

// Response returns the outermost response attached to err.
func Response(err error) (body any, status int, ok bool) {
	var re responder
	if errors.As(err, &re) {
		body, code := re.Response()
		return body, code, true
	}
	return nil, 0, false
}

// Status is the code err will be answered with.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if _, code, ok := Response(err); ok {
		return code
	}
	return http.StatusInternalServerError
}

type fielder interface {
	Fields() map[string]any
}

// Fields merges the log fields of every layer of err, outer layers winning.
func Fields(err error) (map[string]any, bool) {
	var out map[string]any
	for err != nil {
		if fe, ok := err.(fielder); ok {
			if out == nil {
				out = make(map[string]any)
			}
			for k, v := range fe.Fields() {
				if _, seen := out[k]; !seen {
					out[k] = v
				}
			}
		}
		err = errors.Unwrap(err)
	}
	return out, out != nil
}

type responseError struct {
	error
	body   any
	status int
}

func (e *responseError) Response() (any, int) { return e.body, e.status }

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]any
}

func (e *fieldsError) Fields() map[string]any { return e.fields }

func (e *fieldsError) Unwrap() error { return e.error }
