package config

import "time"

type Config struct {
	Web   Web
	DB    DB
	Redis Redis
	Auth  Auth
	Cors  Cors
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:postgres"`
	MaxIdleConns int    `conf:"default:0"`
	MaxOpenConns int    `conf:"default:0"`
	DisableTLS   bool   `conf:"default:true"`
	Migrate      bool   `conf:"default:true"`
}

// Redis caches cart projections. An empty address disables the cache.
type Redis struct {
	Address  string        `conf:"help:host:port of the redis server"`
	Password string        `conf:"mask"`
	DB       int           `conf:"default:0"`
	TTL      time.Duration `conf:"default:1m"`
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
	LoginBurst      int           `conf:"default:5"`
	LoginInterval   time.Duration `conf:"default:1s"`
	LoginExpiry     time.Duration `conf:"default:10m"`
}

type Cors struct {
	Origin string
}
