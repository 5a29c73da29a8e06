package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
	"github.com/irsalhamdi/e-commerce-api/core/claims"
	"github.com/irsalhamdi/e-commerce-api/core/user"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB, v *Viewer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID := web.Param(r, "user_id")
		if err := validate.CheckID(userID); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		if !claims.CanAccess(ctx, userID) {
			return weberr.NotAuthorized(fmt.Errorf("cart of user[%s] is not accessible", userID))
		}

		if err := user.Exists(ctx, db, userID); err != nil {
			return userError(err)
		}

		vs, err := v.Views(ctx, userID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, vs, http.StatusOK)
	}
}

func HandleCreateItem(db *sqlx.DB, cat Catalog, v *Viewer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var add ItemAdd
		if err := web.Decode(w, r, &add); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(add); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		if add.UserID == "" {
			add.UserID = clm.UserID
		}
		if !claims.CanAccess(ctx, add.UserID) {
			return weberr.NotAuthorized(fmt.Errorf("user[%s] cannot change the cart of user[%s]", clm.UserID, add.UserID))
		}

		if err := user.Exists(ctx, db, add.UserID); err != nil {
			return userError(err)
		}

		l, err := AddOrIncrement(ctx, db, cat, ItemNew{
			UserID:    add.UserID,
			ProductID: add.ProductID,
			Quantity:  add.Quantity,
		})
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return weberr.NewError(err, ErrProductNotFound.Error(), http.StatusNotFound)
			}
			return fmt.Errorf("adding product[%s] to cart: %w", add.ProductID, err)
		}
		v.Invalidate(add.UserID)

		return web.Respond(ctx, w, l, http.StatusCreated)
	}
}

// HandleUpdateItem applies ?action= to the caller's line for ?productId=.
// An unknown user or a missing line answers 404 before the action is read.
func HandleUpdateItem(db *sqlx.DB, v *Viewer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		productID := web.Query(r, "productId")
		if err := validate.CheckID(productID); err != nil {
			return weberr.Expose(fmt.Errorf("productId: %w", err), http.StatusBadRequest)
		}

		if err := user.Exists(ctx, db, clm.UserID); err != nil {
			return userError(err)
		}

		if _, err := FetchLine(ctx, db, clm.UserID, productID); err != nil {
			if errors.Is(err, ErrLineNotFound) {
				return weberr.NewError(err, ErrLineNotFound.Error(), http.StatusNotFound)
			}
			return err
		}

		action, err := ParseAction(web.Query(r, "action"))
		if err != nil {
			return weberr.NewError(err, ErrInvalidAction.Error(), http.StatusBadRequest)
		}

		res, err := ApplyAction(ctx, db, clm.UserID, productID, action)
		if err != nil {
			if errors.Is(err, ErrLineNotFound) {
				return weberr.NewError(err, ErrLineNotFound.Error(), http.StatusNotFound)
			}
			return fmt.Errorf("applying %s to cart line: %w", action, err)
		}
		v.Invalidate(clm.UserID)

		resp := struct {
			Message string `json:"message"`
			Result
		}{
			Message: fmt.Sprintf("operation %s completed", action),
			Result:  res,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleClear(db *sqlx.DB, v *Viewer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Clear(ctx, db, clm.UserID); err != nil {
			return err
		}
		v.Invalidate(clm.UserID)

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func userError(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return weberr.NewError(err, user.ErrNotFound.Error(), http.StatusNotFound)
	}
	return err
}
