package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// AuthService resolves bearer tokens to principals. Token verification is a
// database lookup; swapping in JWT later only changes this service, not the
// middleware or handlers.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db: db,
	}
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}
	return token, nil
}

// GetPrincipal looks up the principal for a token. Returns
// gorm.ErrRecordNotFound when the token is unknown (an unauthorized
// request), other errors for database failures.
func (as *AuthService) GetPrincipal(token string) (*Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	var principal Principal
	result := as.db.Where("token = ?", token).First(&principal)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("principal not found for token")
			return nil, result.Error
		}
		slog.Error("failed to fetch principal from database", "error", result.Error)
		return nil, fmt.Errorf("failed to fetch principal: %w", result.Error)
	}

	return &principal, nil
}

// UpsertPrincipal creates or updates a principal record. Useful for
// provisioning and for syncing with an external identity system.
func (as *AuthService) UpsertPrincipal(principal *Principal) error {
	if principal == nil || principal.UserID == "" {
		return fmt.Errorf("principal user ID is empty")
	}
	if principal.TenantID == "" {
		return fmt.Errorf("principal tenant ID is empty")
	}

	result := as.db.Save(principal)
	if result.Error != nil {
		slog.Error("failed to upsert principal",
			"user_id", principal.UserID,
			"error", result.Error,
		)
		return fmt.Errorf("failed to upsert principal: %w", result.Error)
	}

	slog.Debug("principal upserted successfully", "user_id", principal.UserID)
	return nil
}
