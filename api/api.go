package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/e-commerce-api/api/middleware"
	"github.com/irsalhamdi/e-commerce-api/api/web"
	"github.com/irsalhamdi/e-commerce-api/cache"
	"github.com/irsalhamdi/e-commerce-api/core/auth"
	"github.com/irsalhamdi/e-commerce-api/core/cart"
	"github.com/irsalhamdi/e-commerce-api/core/category"
	"github.com/irsalhamdi/e-commerce-api/core/order"
	"github.com/irsalhamdi/e-commerce-api/core/product"
	"github.com/irsalhamdi/e-commerce-api/core/user"
	"github.com/irsalhamdi/e-commerce-api/database"
	"github.com/irsalhamdi/e-commerce-api/metrics"
	"github.com/irsalhamdi/e-commerce-api/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin   string
	Log          logrus.FieldLogger
	DB           *sqlx.DB
	Session      *scs.SessionManager
	Cache        cache.Cache
	Metrics      *metrics.Metrics
	LoginLimiter *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Metrics(cfg.Metrics))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)

	viewer := cart.NewViewer(cfg.DB, cfg.Cache, cfg.Log, cfg.Metrics)
	catalog := product.Catalog{DB: cfg.DB}

	a.Router.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	a.Handle(http.MethodGet, "/health", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := database.StatusCheck(ctx, cfg.DB); err != nil {
			return err
		}
		return web.Respond(ctx, w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session, cfg.LoginLimiter))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)

	a.Handle(http.MethodGet, "/categories", category.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/categories", category.HandleCreate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/products/{id}/price", product.HandleUpdatePrice(cfg.DB), admin)

	a.Handle(http.MethodGet, "/cart/{user_id}", cart.HandleShow(cfg.DB, viewer), authen)
	a.Handle(http.MethodPost, "/cart", cart.HandleCreateItem(cfg.DB, catalog, viewer), authen)
	a.Handle(http.MethodPut, "/cart", cart.HandleUpdateItem(cfg.DB, viewer), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(cfg.DB, viewer), authen)

	a.Handle(http.MethodPost, "/orders", order.HandlePlace(cfg.DB, viewer, cfg.Metrics), authen)
	a.Handle(http.MethodGet, "/orders/for-user/{user_id}", order.HandleQueryByUser(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/{order_id}/details", order.HandleQueryDetails(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
