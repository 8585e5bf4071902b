package db

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vikasavnish/marketaggregator/internal/config"
	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	return gormDB
}

func TestCreateBootstrapOperatorSeedsOnEmptyTable(t *testing.T) {
	gormDB := newTestDB(t)
	log := logging.New("test", "")

	if err := createBootstrapOperator(gormDB, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var user models.User
	if err := gormDB.Where("username = ?", "operator").First(&user).Error; err != nil {
		t.Fatalf("expected bootstrap operator to exist: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(defaultOperatorPassword)); err != nil {
		t.Errorf("expected seeded password to match default: %v", err)
	}
}

func TestCreateBootstrapOperatorIsIdempotent(t *testing.T) {
	gormDB := newTestDB(t)
	log := logging.New("test", "")

	if err := createBootstrapOperator(gormDB, log); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if err := createBootstrapOperator(gormDB, log); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}

	var count int64
	if err := gormDB.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("unexpected error counting users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one operator account, got %d", count)
	}
}

func TestConnectRedisRejectsEmptyURL(t *testing.T) {
	if _, err := ConnectRedis(config.RedisConfig{URL: ""}); err == nil {
		t.Fatal("expected error for empty redis URL")
	}
}

func TestConnectRedisRejectsMalformedURL(t *testing.T) {
	if _, err := ConnectRedis(config.RedisConfig{URL: "not-a-url"}); err == nil {
		t.Fatal("expected error for malformed redis URL")
	}
}
