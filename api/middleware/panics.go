package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
)

// Panics turns a panic in a handler into an error for the Errors middleware.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = weberr.Wrap(
						fmt.Errorf("panic: %v", rec),
						weberr.WithFields(map[string]any{"trace": string(debug.Stack())}),
					)
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
