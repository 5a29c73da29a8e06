// Package auth resolves the caller of a request from its session and exposes
// the signup, login and logout handlers that manage that session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
	"github.com/irsalhamdi/e-commerce-api/core/claims"
	"github.com/irsalhamdi/e-commerce-api/core/user"
	"github.com/irsalhamdi/e-commerce-api/rate"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoadAndSave loads the session named by the request cookie into the context
// and commits it once the rest of the chain has run.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var herr error
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				herr = handler(r.Context(), w, r)
			})

			sm.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))
			return herr
		}
		return h
	}
	return m
}

// Authenticate puts the session user into the context as claims.
func Authenticate(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := sm.GetString(ctx, userIDKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("session carries no user"))
			}

			ctx = claims.Set(ctx, claims.Claims{
				UserID: userID,
				Role:   sm.GetString(ctx, roleKey),
			})
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin is Authenticate restricted to the ADMIN role.
func Admin(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		admin := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !claims.IsAdmin(ctx) {
				return weberr.NotAuthorized(errors.New("admin role required"))
			}
			return handler(ctx, w, r)
		}
		return Authenticate(sm)(admin)
	}
	return m
}

func HandleSignup(db *sqlx.DB, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var s user.UserSignup
		if err := web.Decode(w, r, &s); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(s); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		usr, err := user.New(s, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := user.Create(ctx, db, usr); err != nil {
			if errors.Is(err, user.ErrDuplicateEmail) {
				return weberr.Expose(err, http.StatusBadRequest)
			}
			return fmt.Errorf("creating user: %w", err)
		}

		if err := login(ctx, sm, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, sm *scs.SessionManager, lim *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cred Credentials
		if err := web.Decode(w, r, &cred); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cred); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		if !lim.Check(cred.Email) {
			return weberr.TooManyRequests(fmt.Errorf("login attempts exhausted for %s", cred.Email))
		}

		usr, err := user.FetchByEmail(ctx, db, cred.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NotAuthorized(err)
			}
			return fmt.Errorf("fetching user: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(cred.Password)); err != nil {
			return weberr.NotAuthorized(fmt.Errorf("password mismatch for user[%s]: %w", usr.ID, err))
		}

		if err := login(ctx, sm, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := sm.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func login(ctx context.Context, sm *scs.SessionManager, usr user.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	sm.Put(ctx, userIDKey, usr.ID)
	sm.Put(ctx, roleKey, usr.Role)
	return nil
}
