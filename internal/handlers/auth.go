package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
	"github.com/AsifaBeedi/jewel-site-booster/internal/store"
)

// SessionTTL is how long a dashboard login stays valid.
const SessionTTL = 7 * 24 * time.Hour

// AccountStore is the part of the store the auth handlers need.
type AccountStore interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateSession(ctx context.Context, session models.Session) error
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Auth serves login, logout and the current-user lookup.
type Auth struct {
	accounts      AccountStore
	secureCookies bool
	now           func() time.Time
	newToken      func() (token string, hash string, err error)
}

// NewAuth returns the auth handlers. secureCookies marks the session cookie
// Secure with SameSite=None for cross-site dashboards.
func NewAuth(accounts AccountStore, secureCookies bool) *Auth {
	return &Auth{
		accounts:      accounts,
		secureCookies: secureCookies,
		now:           time.Now,
		newToken:      generateSessionToken,
	}
}

// HandleLogin authenticates user and creates session
func (a *Auth) HandleLogin(c fiber.Ctx) error {
	var req LoginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "Username and password are required")
	}

	ctx := c.Context()
	user, err := a.accounts.UserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		logging.L().Error("login lookup failed", "username", req.Username, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Authentication error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	token, tokenHash, err := a.newToken()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create session")
	}

	session := models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: a.now().Add(SessionTTL),
		UserAgent: truncateUserAgent(c.Get(fiber.HeaderUserAgent)),
		IPAddress: c.IP(),
	}
	if err := a.accounts.CreateSession(ctx, session); err != nil {
		logging.L().Error("failed to create session", "user_id", user.ID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create session")
	}

	c.Cookie(a.sessionCookie(token, session.ExpiresAt))

	return c.JSON(LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
	})
}

// HandleLogout deletes the current session and clears the cookie
func (a *Auth) HandleLogout(c fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	if err := a.accounts.DeleteSession(c.Context(), user.SessionID); err != nil {
		logging.L().Error("failed to delete session", "session_id", user.SessionID, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	c.Cookie(a.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
}

// HandleMe returns current user info
func (a *Auth) HandleMe(c fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	details, err := a.accounts.UserByID(c.Context(), user.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to get user info")
	}
	return c.JSON(details)
}

func (a *Auth) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if a.secureCookies {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   a.secureCookies,
		SameSite: sameSite,
	}
}

// generateSessionToken creates a random session token and its hash
func generateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(bytes)
	return token, middleware.HashToken(token), nil
}

func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
