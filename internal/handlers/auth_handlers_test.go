package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentfolio/internal/common"
	"rentfolio/internal/models"
	"rentfolio/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// Shared test doubles for the handlers package.

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GenerateTokens(ctx context.Context, userID uuid.UUID, role models.Role) (*models.TokenResponse, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, token string, tokenType *string) error {
	args := m.Called(ctx, token, tokenType)
	return args.Error(0)
}

func (m *MockAuthService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) CleanupExpiredTokens(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) CreateTx(ctx context.Context, tx pgx.Tx, profile *models.Profile) error {
	args := m.Called(ctx, tx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileRepository) SearchByRole(ctx context.Context, role models.Role, username string, limit, offset int) ([]*models.Profile, error) {
	args := m.Called(ctx, role, username, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// newJSONContext builds an echo context around a JSON request body.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withIdentity stashes a caller identity into the request context the way the
// JWT middleware does.
func withIdentity(c echo.Context, userID uuid.UUID, role models.Role) {
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.RoleKey, role)
	c.SetRequest(c.Request().WithContext(ctx))
}

type AuthHandlersTestSuite struct {
	suite.Suite
	authService *MockAuthService
	userRepo    *MockUserRepository
	profileRepo *MockProfileRepository
	limiter     *MockRateLimiter
	handlers    *AuthHandlers
}

func (suite *AuthHandlersTestSuite) SetupTest() {
	suite.authService = new(MockAuthService)
	suite.userRepo = new(MockUserRepository)
	suite.profileRepo = new(MockProfileRepository)
	suite.limiter = new(MockRateLimiter)
	suite.limiter.On("IsRateLimited", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil).Maybe()
	suite.handlers = NewAuthHandlers(suite.authService, suite.userRepo, suite.profileRepo, suite.limiter)
}

func TestAuthHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlersTestSuite))
}

func tokenResponseFor(userID uuid.UUID, role models.Role) *models.TokenResponse {
	return &models.TokenResponse{
		AccessToken:  "access",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		RefreshToken: "refresh",
		UserID:       userID.String(),
		Role:         role,
		TokenID:      uuid.New().String(),
	}
}

func (suite *AuthHandlersTestSuite) TestSignup_PasswordMismatchWritesNothing() {
	body := `{"email":"new@example.com","password":"password123","confirm_password":"password124"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup", body)

	err := suite.handlers.Signup(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	suite.userRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	suite.profileRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestSignup_RenterRoleApplied() {
	suite.userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, errors.New("no rows"))
	suite.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.profileRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.profileRepo.On("UpdateRole", mock.Anything, mock.Anything, models.RoleRenter).Return(nil)
	suite.authService.On("GenerateTokens", mock.Anything, mock.Anything, models.RoleRenter).
		Return(tokenResponseFor(uuid.New(), models.RoleRenter), nil)

	body := `{"email":"new@example.com","password":"password123","confirm_password":"password123","role":"renter","username":"newbie"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup", body)

	err := suite.handlers.Signup(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)

	var resp LoginResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), models.RoleRenter, resp.Profile.Role)
	suite.profileRepo.AssertExpectations(suite.T())
}

func (suite *AuthHandlersTestSuite) TestSignup_RoleUpdateFailureKeepsDefault() {
	suite.userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, errors.New("no rows"))
	suite.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.profileRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.profileRepo.On("UpdateRole", mock.Anything, mock.Anything, models.RoleRenter).Return(errors.New("db down"))
	suite.authService.On("GenerateTokens", mock.Anything, mock.Anything, models.RoleOwner).
		Return(tokenResponseFor(uuid.New(), models.RoleOwner), nil)

	body := `{"email":"new@example.com","password":"password123","confirm_password":"password123","role":"renter"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup", body)

	err := suite.handlers.Signup(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)

	var resp LoginResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), models.RoleOwner, resp.Profile.Role)
}

func (suite *AuthHandlersTestSuite) TestSignup_DuplicateEmail() {
	suite.userRepo.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{ID: uuid.New(), Email: "taken@example.com"}, nil)

	body := `{"email":"taken@example.com","password":"password123","confirm_password":"password123"}`
	c, _ := newJSONContext(http.MethodPost, "/v1/auth/signup", body)

	err := suite.handlers.Signup(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusConflict, httpErr.Code)
	suite.userRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestLogin_Success() {
	userID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: userID, Email: "owner@example.com", PasswordHash: string(hash)}
	profile := &models.Profile{ID: userID, Role: models.RoleOwner}

	suite.userRepo.On("GetByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	suite.profileRepo.On("GetByID", mock.Anything, userID).Return(profile, nil)
	suite.authService.On("GenerateTokens", mock.Anything, userID, models.RoleOwner).
		Return(tokenResponseFor(userID, models.RoleOwner), nil)

	body := `{"email":"Owner@Example.com","password":"password123"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", body)

	err := suite.handlers.Login(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp LoginResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "access", resp.AccessToken)
	assert.Equal(suite.T(), userID, resp.Profile.ID)
}

func (suite *AuthHandlersTestSuite) TestLogin_WrongPassword() {
	userID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: userID, Email: "owner@example.com", PasswordHash: string(hash)}

	suite.userRepo.On("GetByEmail", mock.Anything, "owner@example.com").Return(user, nil)

	body := `{"email":"owner@example.com","password":"wrong-password"}`
	c, _ := newJSONContext(http.MethodPost, "/v1/auth/login", body)

	err := suite.handlers.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
	suite.authService.AssertNotCalled(suite.T(), "GenerateTokens", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestLogin_UnknownEmail() {
	suite.userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, errors.New("no rows"))

	body := `{"email":"ghost@example.com","password":"password123"}`
	c, _ := newJSONContext(http.MethodPost, "/v1/auth/login", body)

	err := suite.handlers.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthHandlersTestSuite) TestLogin_RateLimited() {
	limiter := new(MockRateLimiter)
	limiter.On("IsRateLimited", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "login:owner@example.com:")
	}), loginRateLimit, loginRateWindow).Return(true, nil)
	handlers := NewAuthHandlers(suite.authService, suite.userRepo, suite.profileRepo, limiter)

	body := `{"email":"Owner@Example.com","password":"password123"}`
	c, _ := newJSONContext(http.MethodPost, "/v1/auth/login", body)

	err := handlers.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusTooManyRequests, httpErr.Code)
	suite.userRepo.AssertNotCalled(suite.T(), "GetByEmail", mock.Anything, mock.Anything)
	limiter.AssertExpectations(suite.T())
}

func (suite *AuthHandlersTestSuite) TestLogin_LimiterErrorFailsOpen() {
	limiter := new(MockRateLimiter)
	limiter.On("IsRateLimited", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("redis down"))
	handlers := NewAuthHandlers(suite.authService, suite.userRepo, suite.profileRepo, limiter)

	userID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: userID, Email: "owner@example.com", PasswordHash: string(hash)}
	profile := &models.Profile{ID: userID, Role: models.RoleOwner}

	suite.userRepo.On("GetByEmail", mock.Anything, "owner@example.com").Return(user, nil)
	suite.profileRepo.On("GetByID", mock.Anything, userID).Return(profile, nil)
	suite.authService.On("GenerateTokens", mock.Anything, userID, models.RoleOwner).
		Return(tokenResponseFor(userID, models.RoleOwner), nil)

	body := `{"email":"owner@example.com","password":"password123"}`
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", body)

	err := handlers.Login(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestRefresh_InvalidToken() {
	suite.authService.On("RefreshToken", mock.Anything, "stale").Return(nil, errors.New("expired"))

	body := `{"refresh_token":"stale"}`
	c, _ := newJSONContext(http.MethodPost, "/v1/auth/refresh", body)

	err := suite.handlers.Refresh(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthHandlersTestSuite) TestLogout_MissingBearerHeader() {
	c, _ := newJSONContext(http.MethodPost, "/v1/auth/logout", "{}")

	err := suite.handlers.Logout(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
	suite.authService.AssertNotCalled(suite.T(), "RevokeToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestSession_ReturnsUserAndProfile() {
	userID := uuid.New()
	user := &models.User{ID: userID, Email: "owner@example.com"}
	profile := &models.Profile{ID: userID, Role: models.RoleOwner}

	suite.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	suite.profileRepo.On("GetByID", mock.Anything, userID).Return(profile, nil)

	c, rec := newJSONContext(http.MethodGet, "/v1/auth/session", "")
	withIdentity(c, userID, models.RoleOwner)

	err := suite.handlers.Session(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), userID.String())
}
