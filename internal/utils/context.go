package utils

import (
	"context"
	"errors"
)

type contextKey string

const usernameKey contextKey = "authenticatedUsername"

// GetUsernameFromContext extracts the authenticated operator's username, set
// by the auth hook (C11) when AUTH_REQUIRED is enabled.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok || username == "" {
		return "", errors.New("username not found in context")
	}
	return username, nil
}

// SetUsernameToContext adds the authenticated operator's username to ctx.
func SetUsernameToContext(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}
