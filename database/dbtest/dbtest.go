// Package dbtest starts a disposable Postgres container for database tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/irsalhamdi/e-commerce-api/config"
	"github.com/irsalhamdi/e-commerce-api/database"
	"github.com/irsalhamdi/e-commerce-api/random"
	"github.com/irsalhamdi/e-commerce-api/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

type Database struct {
	DB       *sqlx.DB
	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// Start runs a postgres container named after the test suite and migrates
// it. It fails when no docker daemon is reachable; callers usually skip
// their database tests in that case.
func Start(name string) (*Database, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("pinging docker: %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "cartapi_" + name + "_" + strings.ToLower(random.String(6)),
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=testdb",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	_ = resource.Expire(300)

	cfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       resource.GetHostPort("5432/tcp"),
		Name:       "testdb",
		DisableTLS: true,
	}

	var db *sqlx.DB
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		var err error
		if db, err = database.Open(cfg); err != nil {
			return err
		}
		return database.StatusCheck(context.Background(), db)
	})
	if err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("waiting for postgres: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("migrating: %w", err)
	}

	return &Database{DB: db, pool: pool, resource: resource}, nil
}

func (d *Database) Close() error {
	d.DB.Close()
	return d.pool.Purge(d.resource)
}

// Reset empties every table so each test starts from a clean store.
func (d *Database) Reset(ctx context.Context) error {
	const q = `TRUNCATE order_details, orders, cart_items, products, categories, users CASCADE`
	if _, err := d.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("truncating tables: %w", err)
	}
	return nil
}

// SeedUser inserts a user with an unusable password and returns its id.
func (d *Database) SeedUser(ctx context.Context, email string) (string, error) {
	const q = `
	INSERT INTO users (user_id, name, email, role, password_hash, created_at, updated_at)
	VALUES ($1, $2, $3, 'USER', '\x00', $4, $4)`

	id := validate.GenerateID()
	if _, err := d.DB.ExecContext(ctx, q, id, email, email, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("seeding user: %w", err)
	}
	return id, nil
}

// SeedProduct inserts a catalog product priced at price and returns its id.
func (d *Database) SeedProduct(ctx context.Context, name string, price string) (string, error) {
	const q = `
	INSERT INTO products (product_id, name, image_url, price, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5)`

	id := validate.GenerateID()
	if _, err := d.DB.ExecContext(ctx, q, id, name, name+".png", price, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("seeding product: %w", err)
	}
	return id, nil
}
