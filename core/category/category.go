package category

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
)

type Category struct {
	ID       string `json:"id" db:"category_id"`
	Name     string `json:"name" db:"name"`
	ImageURL string `json:"imageUrl" db:"image_url"`
}

type CategoryNew struct {
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"imageUrl"`
}

func Create(ctx context.Context, db sqlx.ExtContext, c Category) error {
	const q = `INSERT INTO categories (category_id, name, image_url) VALUES (:category_id, :name, :image_url)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func List(ctx context.Context, db sqlx.QueryerContext) ([]Category, error) {
	const q = `SELECT category_id, name, image_url FROM categories ORDER BY name`

	cs := []Category{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting categories: %w", err)
	}
	return cs, nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cs, err := List(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cn CategoryNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		c := Category{
			ID:       validate.GenerateID(),
			Name:     cn.Name,
			ImageURL: cn.ImageURL,
		}
		if err := Create(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}
