package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/AsifaBeedi/jewel-site-booster/internal/database"
	"github.com/AsifaBeedi/jewel-site-booster/internal/store"
)

// SessionCookieName carries the dashboard session token.
const SessionCookieName = "booster_session"

// ErrInvalidSession means the token is unknown or expired.
var ErrInvalidSession = errors.New("invalid or expired session")

// UserContext holds the authenticated user information
type UserContext struct {
	UserID    uuid.UUID
	Username  string
	Name      *string
	SessionID uuid.UUID
}

// SessionValidator resolves a token hash to a user.
type SessionValidator func(ctx context.Context, tokenHash string) (*UserContext, error)

// sessionValidator is swapped out in tests
var sessionValidator SessionValidator = validateSessionInDB

// SetSessionValidator replaces the validator used by Auth and AuthWithRedirect
// and returns the previous one.
func SetSessionValidator(v SessionValidator) SessionValidator {
	prev := sessionValidator
	sessionValidator = v
	return prev
}

func validateSessionInDB(ctx context.Context, tokenHash string) (*UserContext, error) {
	if database.DB == nil {
		return nil, errors.New("database not connected")
	}
	return StoreValidator(store.New(database.DB))(ctx, tokenHash)
}

// StoreValidator adapts a store to a SessionValidator.
func StoreValidator(s *store.Store) SessionValidator {
	return func(ctx context.Context, tokenHash string) (*UserContext, error) {
		su, err := s.ValidateSession(ctx, tokenHash)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		if err != nil {
			return nil, err
		}
		return &UserContext{
			UserID:    su.UserID,
			Username:  su.Username,
			Name:      su.Name,
			SessionID: su.SessionID,
		}, nil
	}
}

// Auth middleware validates session tokens and loads user context
func Auth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized - no session token provided",
		})
	}

	userCtx, err := sessionValidator(c.Context(), HashToken(token))
	if errors.Is(err, ErrInvalidSession) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized - invalid or expired session",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication error",
		})
	}

	c.Locals("user", userCtx)
	return c.Next()
}

// AuthWithRedirect is Auth for HTML pages: failures redirect to /login.
func AuthWithRedirect(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return c.Redirect().Status(fiber.StatusFound).To("/login")
	}

	userCtx, err := sessionValidator(c.Context(), HashToken(token))
	if err != nil {
		return c.Redirect().Status(fiber.StatusFound).To("/login")
	}

	c.Locals("user", userCtx)
	return c.Next()
}

func extractToken(c fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	// Also check Authorization header for API clients
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUser retrieves the authenticated user from context
func GetUser(c fiber.Ctx) *UserContext {
	if user, ok := c.Locals("user").(*UserContext); ok {
		return user
	}
	return nil
}

// HashToken creates the SHA-256 hash under which a session token is stored
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
