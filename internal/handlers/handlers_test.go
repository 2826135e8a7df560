package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/adapters/database/memory"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	"github.com/SscSPs/user_accounts_service/internal/core/services"
	"github.com/SscSPs/user_accounts_service/internal/handlers"
	"github.com/SscSPs/user_accounts_service/internal/middleware"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/SscSPs/user_accounts_service/internal/platform/metrics"
	"github.com/SscSPs/user_accounts_service/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

const password = "Passw0rd!"

// fakeMediaStore keeps uploads in memory.
type fakeMediaStore struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (f *fakeMediaStore) Upload(_ context.Context, kind domain.MediaKind, upload *domain.MediaUpload) (string, error) {
	if _, err := io.Copy(io.Discard, upload.Body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return fmt.Sprintf("https://cdn.test/%s/%d.png", kind, f.n), nil
}

func (f *fakeMediaStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type loginData struct {
	User struct {
		UserID   string `json:"userID"`
		Username string `json:"username"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type HandlersTestSuite struct {
	suite.Suite
	cfg    *config.Config
	media  *fakeMediaStore
	router *gin.Engine
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = &config.Config{
		AccessTokenSecret:          "access-secret-for-handler-tests",
		AccessTokenExpiryDuration:  15 * time.Minute,
		RefreshTokenSecret:         "refresh-secret-for-handler-tests",
		RefreshTokenExpiryDuration: 24 * time.Hour,
		JWTIssuer:                  "user-accounts-test",
		BcryptCost:                 4,
		AllowedOrigins:             []string{"http://localhost:3000"},
		LoginRateLimit:             "100-M",
		MaxUploadBytes:             1 << 20,
		IsProduction:               true,
	}
	s.media = &fakeMediaStore{}
	s.router = s.newRouter(s.cfg)
}

func (s *HandlersTestSuite) newRouter(cfg *config.Config) *gin.Engine {
	repos := memory.NewRepositoryProvider()
	container := services.NewServiceContainer(cfg, repos, services.ContainerDeps{
		Validator: validation.New(),
		Media:     s.media,
	})

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers.RegisterRoutes(r, cfg, container, metrics.New())
	return r
}

func (s *HandlersTestSuite) do(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(path string, fields map[string]string, files map[string]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for field, name := range files {
		fw, _ := mw.CreateFormFile(field, name)
		_, _ = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (s *HandlersTestSuite) register(username, email string) envelope {
	w, env := s.do(multipartRequest("/api/v1/users/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"fullName": "Alice Smith",
	}, map[string]string{"avatar": "me.png"}))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return env
}

func (s *HandlersTestSuite) login(username string) (loginData, *httptest.ResponseRecorder) {
	w, env := s.do(jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": username,
		"password": password,
	}))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var data loginData
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	return data, w
}

func cookieValue(w *httptest.ResponseRecorder, name string) (*http.Cookie, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (s *HandlersTestSuite) TestRegister() {
	env := s.register("alice", "alice@example.com")
	s.True(env.Success)
	s.Equal("User registered Successfully", env.Message)
	s.NotContains(string(env.Data), "password")
	s.NotContains(string(env.Data), "refresh")
	s.Contains(string(env.Data), "https://cdn.test/avatar/1.png")
}

func (s *HandlersTestSuite) TestRegister_Conflict() {
	s.register("alice", "alice@example.com")

	w, env := s.do(multipartRequest("/api/v1/users/register", map[string]string{
		"username": "bob", "email": "alice@example.com", "password": password, "fullName": "Bob Jones",
	}, map[string]string{"avatar": "bob.png"}))

	s.Equal(http.StatusConflict, w.Code)
	s.False(env.Success)
	s.Equal("User with email or username already exists", env.Message)
}

func (s *HandlersTestSuite) TestRegister_ValidationAndMissingAvatar() {
	w, env := s.do(multipartRequest("/api/v1/users/register", map[string]string{
		"username": "a!", "email": "bad", "password": "short", "fullName": "",
	}, map[string]string{"avatar": "a.png"}))
	s.Equal(http.StatusBadRequest, w.Code)
	s.NotEmpty(env.Errors)

	w, env = s.do(multipartRequest("/api/v1/users/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": password, "fullName": "Alice Smith",
	}, nil))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Avatar file is required", env.Message)
}

func (s *HandlersTestSuite) TestLogin_SetsCookiesAndBody() {
	s.register("alice", "alice@example.com")
	data, w := s.login("alice")

	s.NotEmpty(data.AccessToken)
	s.NotEmpty(data.RefreshToken)
	s.Equal("alice", data.User.Username)

	access, ok := cookieValue(w, middleware.AccessTokenCookie)
	s.Require().True(ok)
	s.True(access.HttpOnly)
	s.Equal(data.AccessToken, access.Value)

	refresh, ok := cookieValue(w, middleware.RefreshTokenCookie)
	s.Require().True(ok)
	s.Equal(data.RefreshToken, refresh.Value)
}

func (s *HandlersTestSuite) TestLogin_InvalidCredentials() {
	s.register("alice", "alice@example.com")

	w1, env1 := s.do(jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{"username": "alice", "password": "Wr0ng!pass"}))
	w2, env2 := s.do(jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{"username": "nobody", "password": password}))

	s.Equal(http.StatusUnauthorized, w1.Code)
	s.Equal(http.StatusUnauthorized, w2.Code)
	s.Equal(env1.Message, env2.Message)
}

func (s *HandlersTestSuite) TestLogin_RateLimited() {
	cfg := *s.cfg
	cfg.LoginRateLimit = "2-M"
	s.router = s.newRouter(&cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w, _ := s.do(jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{"username": "nobody", "password": password}))
		codes = append(codes, w.Code)
	}
	s.Equal([]int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func (s *HandlersTestSuite) TestGetUser_RequiresAccessToken() {
	s.register("alice", "alice@example.com")
	data, _ := s.login("alice")

	w, _ := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/get-user", nil))
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/get-user", nil), data.RefreshToken))
	s.Equal(http.StatusUnauthorized, w.Code)

	w, env := s.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/get-user", nil), data.AccessToken))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), data.User.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/get-user", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: data.AccessToken})
	w, _ = s.do(req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestGenerateToken_RotationAndReuse() {
	s.register("alice", "alice@example.com")
	data, _ := s.login("alice")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/generateToken", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: data.RefreshToken})
	w, env := s.do(req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("new tokens generated successfully", env.Message)

	var rotated loginData
	s.Require().NoError(json.Unmarshal(env.Data, &rotated))
	s.NotEqual(data.RefreshToken, rotated.RefreshToken)

	w, env = s.do(jsonRequest(http.MethodPost, "/api/v1/users/generateToken", map[string]string{"refreshToken": data.RefreshToken}))
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid refresh token", env.Message)

	w, _ = s.do(jsonRequest(http.MethodPost, "/api/v1/users/generateToken", map[string]string{"refreshToken": rotated.RefreshToken}))
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestGenerateToken_Missing() {
	w, env := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/users/generateToken", nil))
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Unauthorized request - refresh token required", env.Message)
}

func (s *HandlersTestSuite) TestLogout() {
	s.register("alice", "alice@example.com")
	data, _ := s.login("alice")

	w, env := s.do(withBearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), data.AccessToken))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("User logged out successfully", env.Message)
	cleared, ok := cookieValue(w, middleware.RefreshTokenCookie)
	s.Require().True(ok)
	s.Empty(cleared.Value)

	w, _ = s.do(jsonRequest(http.MethodPost, "/api/v1/users/generateToken", map[string]string{"refreshToken": data.RefreshToken}))
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(withBearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), data.AccessToken))
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestChangePassword() {
	s.register("alice", "alice@example.com")
	data, _ := s.login("alice")

	w, env := s.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/users/change-password",
		map[string]string{"oldPassword": password, "newPassword": password}), data.AccessToken))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Old password and new password cannot be same", env.Message)

	w, _ = s.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "Wr0ng!pass", "newPassword": "N3w!Password"}), data.AccessToken))
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/users/change-password",
		map[string]string{"oldPassword": password, "newPassword": "N3w!Password"}), data.AccessToken))
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestUpdateUserDetails() {
	s.register("alice", "alice@example.com")
	s.register("bob", "bob@example.com")
	data, _ := s.login("alice")

	w, env := s.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/users/update-user-details",
		map[string]string{"fullName": "Alice Jones"}), data.AccessToken))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), "Alice Jones")

	w, _ = s.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/users/update-user-details",
		map[string]string{"email": "bob@example.com"}), data.AccessToken))
	s.Equal(http.StatusConflict, w.Code)

	w, env = s.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/users/update-user-details",
		map[string]string{}), data.AccessToken))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("At least one of fullName or email must be provided", env.Message)
}

func (s *HandlersTestSuite) TestUpdateAvatar() {
	s.register("alice", "alice@example.com")
	data, _ := s.login("alice")

	w, env := s.do(withBearer(multipartRequest("/api/v1/users/update-avatar", nil, map[string]string{"avatar": "new.png"}), data.AccessToken))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("avatar changed successfully", env.Message)
	s.Contains(string(env.Data), "https://cdn.test/avatar/2.png")
	s.Equal([]string{"https://cdn.test/avatar/1.png"}, s.media.deleted)

	w, env = s.do(withBearer(multipartRequest("/api/v1/users/update-cover-image", nil, nil), data.AccessToken))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("new Cover Image file required", env.Message)
}

func (s *HandlersTestSuite) TestHealthAndMetrics() {
	w, _ := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "user_accounts_http_requests_total")
}
