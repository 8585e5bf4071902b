package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, password string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Username: username, HashedPassword: string(hashed), Role: "operator"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "operator", "s3cret")
	svc := NewService(db)

	user, err := svc.Authenticate("operator", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "operator" {
		t.Errorf("expected username operator, got %q", user.Username)
	}
}

func TestAuthenticateUnknownUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.Authenticate("ghost", "whatever")
	if err == nil {
		t.Fatal("expected error for unknown username")
	}
	if models.KindOf(err) != models.KindValidation {
		t.Errorf("expected KindValidation, got %v", models.KindOf(err))
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "operator", "s3cret")
	svc := NewService(db)

	_, err := svc.Authenticate("operator", "wrong")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	if models.KindOf(err) != models.KindValidation {
		t.Errorf("expected KindValidation, got %v", models.KindOf(err))
	}
}

func TestGenerateTokenProducesParseableJWT(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	secret := []byte("test-secret-key")

	user := models.User{Username: "operator"}
	token, err := svc.GenerateToken(user, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
}
