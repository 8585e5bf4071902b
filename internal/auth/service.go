// Package auth implements the pluggable auth hook (C11): a single bootstrap
// operator credential, bcrypt-verified, exchanged for a short-lived HS256
// JWT. Grounded on internal/services/auth_service.go from the teacher,
// trimmed from a full user-management surface down to the one-account shape
// spec.md's Non-goals call for.
package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

const tokenTTL = 60 * time.Minute

// Service authenticates the bootstrap operator account and mints its JWT.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Authenticate verifies username/password against the seeded operator row.
func (s *Service) Authenticate(username, password string) (models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, models.NewValidation("unknown username")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return models.User{}, models.NewValidation("incorrect password")
	}
	return user, nil
}

// GenerateToken issues an HS256 JWT for user, valid for tokenTTL.
func (s *Service) GenerateToken(user models.User, secretKey []byte) (string, error) {
	claims := &models.Claims{
		Username: user.Username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}
