package models

import (
	"github.com/dgrijalva/jwt-go"
)

// User is the single bootstrap operator account the pluggable auth hook
// authenticates against. This service has no user-management surface; there
// is exactly one credential, seeded at startup.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"unique" json:"username"`
	Password       string `json:"password,omitempty" gorm:"-"`
	HashedPassword string `json:"-" gorm:"column:hashed_password"`
	Role           string `json:"role"`
}

// Claims is the JWT payload the auth hook issues and validates.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
