package db

import (
	"context"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vikasavnish/marketaggregator/internal/config"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

const defaultOperatorPassword = "changeme123"

// Connect opens the audit database (C12). When cfg.URL is unset it falls
// back to an in-process sqlite file rather than refusing to start — the
// audit trail is a "what happened" ledger, not the source of truth, so its
// absence should never block the rest of the service from booting.
func Connect(cfg config.DatabaseConfig, log *logging.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.URL != "" {
		dialector = postgres.Open(cfg.URL)
	} else {
		log.Warn("POSTGRES_URL not set, falling back to local sqlite audit database")
		dialector = sqlite.Open("marketdata_audit.db")
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := createBootstrapOperator(gormDB, log); err != nil {
		return nil, err
	}

	return gormDB, nil
}

// ConnectRedis establishes a connection to Redis. Callers treat a nil
// client/error as "publish is disabled" (SPEC_FULL.md §6's REDIS_URL entry)
// rather than a fatal startup condition.
func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return client, nil
}

// createBootstrapOperator seeds the single operator credential the auth hook
// (C11) validates against, if none exists yet.
func createBootstrapOperator(gormDB *gorm.DB, log *logging.Logger) error {
	if err := gormDB.AutoMigrate(&models.User{}); err != nil {
		return err
	}

	var count int64
	if err := gormDB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultOperatorPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := gormDB.Create(&models.User{
		Username:       "operator",
		HashedPassword: string(hashed),
		Role:           "operator",
	}).Error; err != nil {
		return err
	}
	log.Warn("created bootstrap operator account with the default password, change it before enabling AUTH_REQUIRED")
	return nil
}
