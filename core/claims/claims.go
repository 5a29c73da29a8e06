// Package claims carries the authenticated caller through a request context.
package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var ErrMissing = errors.New("claim value missing from context")

type Claims struct {
	UserID string
	Role   string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok || v.UserID == "" {
		return Claims{}, ErrMissing
	}
	return v, nil
}

func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	return c.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or change data owned by
// userID: the owner itself or an admin.
func CanAccess(ctx context.Context, userID string) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	return c.UserID == userID || c.Role == RoleAdmin
}
