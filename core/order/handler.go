package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/api/weberr"
	"github.com/irsalhamdi/e-commerce-api/core/cart"
	"github.com/irsalhamdi/e-commerce-api/core/claims"
	"github.com/irsalhamdi/e-commerce-api/core/user"
	"github.com/irsalhamdi/e-commerce-api/metrics"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
)

func HandlePlace(db *sqlx.DB, v *cart.Viewer, m *metrics.Metrics) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var on OrderNew
		if err := web.Decode(w, r, &on); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(on); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		if on.UserID == "" {
			on.UserID = clm.UserID
		}
		if !claims.CanAccess(ctx, on.UserID) {
			return weberr.NotAuthorized(fmt.Errorf("user[%s] cannot place orders for user[%s]", clm.UserID, on.UserID))
		}

		if err := user.Exists(ctx, db, on.UserID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NewError(err, user.ErrNotFound.Error(), http.StatusNotFound)
			}
			return err
		}

		ord, err := Place(ctx, db, on.UserID, on.Total)
		switch {
		case errors.Is(err, ErrEmptyCart):
			m.Placements.WithLabelValues(metrics.EmptyCart).Inc()
			return weberr.Expose(err, http.StatusNotFound)

		case err != nil:
			m.Placements.WithLabelValues(metrics.TxnFailure).Inc()
			return weberr.NewError(
				err,
				ErrPlacementFailed.Error(),
				http.StatusInternalServerError,
				weberr.WithFields(map[string]any{"user_id": on.UserID}),
			)
		}

		m.Placements.WithLabelValues(metrics.Placed).Inc()
		v.Invalidate(on.UserID)

		resp := struct {
			OrderID string `json:"orderId"`
		}{ord.ID}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleQueryDetails(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "order_id")
		if err := validate.CheckID(orderID); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		ord, err := Fetch(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NewError(err, ErrNoDetails.Error(), http.StatusNotFound)
			}
			return err
		}

		if !claims.CanAccess(ctx, ord.UserID) {
			return weberr.NotAuthorized(fmt.Errorf("order[%s] is not accessible", orderID))
		}

		ds, err := QueryDetails(ctx, db, orderID)
		if err != nil {
			return err
		}

		if len(ds) == 0 {
			return weberr.Expose(ErrNoDetails, http.StatusNotFound)
		}

		return web.Respond(ctx, w, ds, http.StatusOK)
	}
}

func HandleQueryByUser(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID := web.Param(r, "user_id")
		if err := validate.CheckID(userID); err != nil {
			return weberr.Expose(err, http.StatusBadRequest)
		}

		if !claims.CanAccess(ctx, userID) {
			return weberr.NotAuthorized(fmt.Errorf("orders of user[%s] are not accessible", userID))
		}

		sums, err := QueryByUser(ctx, db, userID)
		if err != nil {
			return err
		}

		if len(sums) == 0 {
			return weberr.Expose(ErrNoOrders, http.StatusNotFound)
		}

		return web.Respond(ctx, w, sums, http.StatusOK)
	}
}
