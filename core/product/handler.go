package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		kind := Kind(web.Query(r, "kind"))
		categoryID := web.Query(r, "categoryId")

		if kind == KindCategory {
			if err := validate.CheckID(categoryID); err != nil {
				return weberr.Expose(fmt.Errorf("categoryId: %w", err), http.StatusBadRequest)
			}
		}

		ps, err := List(ctx, db, kind, categoryID)
		if err != nil {
			if errors.Is(err, ErrInvalidKind) {
				return weberr.Expose(err, http.StatusBadRequest)
			}
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.Expose(err, http.StatusNotFound)
			}
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		now := time.Now().UTC()
		p := Product{
			ID:         validate.GenerateID(),
			CategoryID: pn.CategoryID,
			Name:       pn.Name,
			Details:    pn.Details,
			ImageURL:   pn.ImageURL,
			Price:      pn.Price,
			Popular:    pn.Popular,
			BestSeller: pn.BestSeller,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := Create(ctx, db, p); err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

// HandleUpdatePrice changes the catalog price. Cart lines and order details
// keep the price they captured.
func HandleUpdatePrice(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		var up PriceUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		if err := UpdatePrice(ctx, db, id, up.Price, time.Now().UTC()); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.Expose(err, http.StatusNotFound)
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
