package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/repositories"
	"rentfolio/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// Login attempts allowed per email+IP inside the window
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// RateLimiter counts attempts against a key. The redis cache service
// satisfies it.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	limiter     RateLimiter
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, profileRepo repositories.ProfileRepository, limiter RateLimiter) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		limiter:     limiter,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse bundles the token pair with the caller's profile
type LoginResponse struct {
	models.TokenResponse
	Profile *models.Profile `json:"profile"`
}

// Login verifies credentials and issues a token pair. Attempts are counted
// per email+IP and throttled before the password is ever checked.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Counted before the credential check so failed guesses burn attempts too
	if h.limiter != nil {
		limited, err := h.limiter.IsRateLimited(ctx, fmt.Sprintf("login:%s:%s", email, c.RealIP()), loginRateLimit, loginRateWindow)
		if err == nil && limited {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, try again later")
		}
	}

	user, err := h.userRepo.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	profile, err := h.profileRepo.GetByID(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Profile not found")
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, user.ID, profile.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: *tokenResponse,
		Profile:       profile,
	})
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Role            string `json:"role"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
}

// Signup creates the auth identity and its profile. The profile starts with
// the owner role; a requested renter role is applied as a best-effort
// follow-up update whose failure is logged, not surfaced, so the identity
// always survives with a usable default.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return common.SendValidationError(c, "email", "email is required")
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}
	// Rejected before any write happens
	if req.Password != req.ConfirmPassword {
		return common.SendValidationError(c, "confirm_password", "passwords do not match")
	}

	requestedRole := models.Role(req.Role)
	if req.Role != "" && !requestedRole.Valid() {
		return common.SendValidationError(c, "role", "role must be tenant or renter")
	}

	if existing, err := h.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "A user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process password")
	}

	userID := uuid.New()
	user := &models.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: string(hash),
		Status:       "active",
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	profile := &models.Profile{
		ID:   userID,
		Role: models.RoleOwner,
	}
	if req.Username != "" {
		profile.Username = &req.Username
	}
	if req.FullName != "" {
		profile.FullName = &req.FullName
	}
	if err := h.profileRepo.Create(ctx, profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
	}

	if requestedRole.Valid() && requestedRole != profile.Role {
		if err := h.profileRepo.UpdateRole(ctx, userID, requestedRole); err != nil {
			// Partial-failure outcome: identity exists, role stays at the default
			log.Printf("WARN: signup role update failed for user %s: %v", userID, err)
		} else {
			profile.Role = requestedRole
		}
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, userID, profile.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusCreated, LoginResponse{
		TokenResponse: *tokenResponse,
		Profile:       profile,
	})
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token into a fresh token pair
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}

	tokenResponse, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// LogoutRequest optionally carries the refresh token to revoke alongside the
// access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout blacklists the presented access token and deletes the refresh token
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	if err := h.authService.RevokeToken(ctx, tokenString, nil); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	var req LogoutRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		refreshType := "refresh_token"
		if err := h.authService.RevokeToken(ctx, req.RefreshToken, &refreshType); err != nil {
			log.Printf("WARN: failed to revoke refresh token on logout: %v", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session returns the caller's identity as resolved from the validated token
func (h *AuthHandlers) Session(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "User")
	}
	profile, err := h.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "Profile")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":    user,
		"profile": profile,
	})
}
