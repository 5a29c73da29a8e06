package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
	"github.com/irsalhamdi/e-commerce-api/core/claims"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type UserSignup struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

// New hashes the signup password and builds a user with the USER role.
func New(s UserSignup, now time.Time) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	return User{
		ID:           validate.GenerateID(),
		Name:         s.Name,
		Email:        strings.ToLower(s.Email),
		Role:         claims.RoleUser,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, role, password_hash, created_at, updated_at)
	VALUES
		(:user_id, :name, :email, :role, :password_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.QueryerContext, id string) (User, error) {
	const q = `
	SELECT user_id, name, email, role, password_hash, created_at, updated_at
	FROM users
	WHERE user_id = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user[%s]: %w", id, err)
	}
	return usr, nil
}

func FetchByEmail(ctx context.Context, db sqlx.QueryerContext, email string) (User, error) {
	const q = `
	SELECT user_id, name, email, role, password_hash, created_at, updated_at
	FROM users
	WHERE email = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, strings.ToLower(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}
	return usr, nil
}

// Exists is the cheap check handlers run before reading data keyed by a
// user id taken from the path.
func Exists(ctx context.Context, db sqlx.QueryerContext, id string) error {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`

	var ok bool
	if err := sqlx.GetContext(ctx, db, &ok, q, id); err != nil {
		return fmt.Errorf("checking user[%s]: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		usr, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.Expose(err, http.StatusNotFound)
			}
			return fmt.Errorf("fetching current user: %w", err)
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}
