package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/maisrole-api/config"
	"github.com/oksasatya/maisrole-api/internal/container"
	pginfra "github.com/oksasatya/maisrole-api/internal/infrastructure/postgres"
	"github.com/oksasatya/maisrole-api/pkg/helpers"
)

const retryBase = 500 * time.Millisecond

// loadBase reads config and builds the logger; every subcommand starts here.
func loadBase() (*config.Config, *logrus.Logger) {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	container.SetConfig(cfg)
	container.SetLogger(logger)
	return cfg, logger
}

func connectPostgres(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := helpers.Retry(ctx, logger, "postgres", cfg.StartupRetries, retryBase, func(ctx context.Context) error {
		p, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	container.SetPGPool(pool)
	return pool, nil
}

// connectRedis returns nil when redis stays unreachable; rate limiting is
// then disabled rather than blocking startup.
func connectRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	err := helpers.Retry(ctx, logger, "redis", cfg.StartupRetries, retryBase, func(ctx context.Context) error {
		return helpers.PingRedis(ctx, rdb)
	})
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
		_ = rdb.Close()
		return nil
	}
	container.SetRedis(rdb)
	return rdb
}

// connectPublisher returns nil when rabbitmq stays unreachable; account
// events are then dropped.
func connectPublisher(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *helpers.RabbitPublisher {
	if cfg.RabbitMQURL == "" || cfg.RabbitMQAccountQueue == "" {
		return nil
	}
	var pub *helpers.RabbitPublisher
	err := helpers.Retry(ctx, logger, "rabbitmq", cfg.StartupRetries, retryBase, func(context.Context) error {
		p, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQAccountQueue)
		if err != nil {
			return err
		}
		pub = p
		return nil
	})
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable; account emails disabled")
		return nil
	}
	container.SetRabbitPub(pub)
	return pub
}

// setupSecurity registers the token issuer, password hasher and cookie
// settings in the container.
func setupSecurity(cfg *config.Config, logger *logrus.Logger) {
	if cfg.IsDevelopment() && cfg.JWTAccessSecret == "devaccesssecret" {
		logger.Warn("using the development JWT secret")
	}
	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL, cfg.JWTIssuer))
	container.SetHasher(helpers.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost))
	container.SetCookies(helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure))
}
