package bootstrap

import (
	"os"
	"time"

	"keystone-backend/internal/config"
	"keystone-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SetupLogger configures the global zerolog logger: console writer in development,
// JSON everywhere else.
func SetupLogger(env string) {
	if env == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// New loads config, configures logging, and creates the Fiber app with its
// database and Redis handles.
func New() (*fiber.App, *config.Config, *gorm.DB, *redis.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	SetupLogger(cfg.Env)
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return app, cfg, db, rdb, nil
}
