package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/e-commerce-api/api"
	"github.com/irsalhamdi/e-commerce-api/cache"
	"github.com/irsalhamdi/e-commerce-api/config"
	"github.com/irsalhamdi/e-commerce-api/database"
	"github.com/irsalhamdi/e-commerce-api/metrics"
	"github.com/irsalhamdi/e-commerce-api/rate"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "CARTAPI"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate the database: %w", err)
		}
	}

	var cch cache.Cache = cache.Noop{}
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ReadTimeout)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Address, err)
		}

		cch = cache.NewRedis(rdb, cfg.Redis.TTL)
		logger.Infof("caching carts in redis at %s", cfg.Redis.Address)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Auth.SessionLifetime

	loginLimiter := rate.NewLimiter(cfg.Auth.LoginBurst, cfg.Auth.LoginExpiry, rate.Every(cfg.Auth.LoginInterval))
	defer loginLimiter.Close()

	mux := api.APIMux(api.APIConfig{
		CorsOrigin:   cfg.Cors.Origin,
		Log:          logger,
		DB:           db,
		Session:      sessionManager,
		Cache:        cch,
		Metrics:      metrics.New(),
		LoginLimiter: loginLimiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
