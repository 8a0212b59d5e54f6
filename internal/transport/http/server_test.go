package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"user_hub/internal/domain/models"
	jwtlib "user_hub/internal/lib/jwt"
	"user_hub/internal/middleware"
	token "user_hub/internal/services/token_service"
	user "user_hub/internal/services/user_service"
	httprouters "user_hub/internal/transport/http"
	"user_hub/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Register(ctx context.Context, input dto.UserRegisterInput) (models.User, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockTokenService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if pair := args.Get(0); pair != nil {
		return pair.(*models.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if pair := args.Get(0); pair != nil {
		return pair.(*models.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, page, perPage int, search string) (*models.Page, error) {
	args := m.Called(ctx, page, perPage, search)
	if p := args.Get(0); p != nil {
		return p.(*models.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, input dto.UserRegisterInput) (models.User, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id int64, input dto.UserUpdateInput) error {
	args := m.Called(ctx, id, input)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, userID, file)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) AvatarURL(ctx context.Context, key string) string {
	args := m.Called(ctx, key)
	return args.String(0)
}

func setup() (*echo.Echo, *MockTokenService, *MockUserService, *httprouters.Routers) {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	tokenService := new(MockTokenService)
	userService := new(MockUserService)
	routers := httprouters.NewRouter(slog.Default(), tokenService, userService)

	return e, tokenService, userService, routers
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestRegister(t *testing.T) {
	e, tokenService, _, routers := setup()

	body := `{"first_name":"Alice","last_name":"Smith","email":"alice@example.com","password":"password123"}`

	t.Run("created", func(t *testing.T) {
		tokenService.On("Register", mock.Anything, mock.Anything).
			Return(models.User{ID: 1, Email: "alice@example.com"}, nil).Once()

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/register", body), rec)

		require.NoError(t, routers.Register(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("conflict", func(t *testing.T) {
		tokenService.On("Register", mock.Anything, mock.Anything).
			Return(models.User{}, token.ErrUserExist).Once()

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/register", body), rec)

		require.NoError(t, routers.Register(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/register", `{"email":"not-an-email"}`), rec)

		require.NoError(t, routers.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	e, tokenService, _, routers := setup()

	t.Run("success", func(t *testing.T) {
		tokenService.On("Login", mock.Anything, "alice@example.com", "password123").
			Return(&models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil).Once()

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/login",
			`{"email":"alice@example.com","password":"password123"}`), rec)

		require.NoError(t, routers.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "access_token")
	})

	t.Run("store failure is not a credential failure", func(t *testing.T) {
		tokenService.On("Login", mock.Anything, "alice@example.com", "password123").
			Return(nil, errors.New("token_service.Login: connection refused")).Once()

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/login",
			`{"email":"alice@example.com","password":"password123"}`), rec)

		require.NoError(t, routers.Login(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("unauthorized, single message for any cause", func(t *testing.T) {
		tokenService.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, token.ErrInvalidCredentials).Twice()

		var bodies []string
		for _, payload := range []string{
			`{"email":"alice@example.com","password":"wrong-password"}`,
			`{"email":"nobody@example.com","password":"password123"}`,
		} {
			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/login", payload), rec)

			require.NoError(t, routers.Login(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		}

		assert.Equal(t, bodies[0], bodies[1])
	})
}

func TestRefresh(t *testing.T) {
	e, tokenService, _, routers := setup()

	t.Run("rotated", func(t *testing.T) {
		tokenService.On("Refresh", mock.Anything, "old-refresh").
			Return(&models.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/refresh", `{"refresh_token":"old-refresh"}`), rec)

		require.NoError(t, routers.Refresh(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		tokenService.On("Refresh", mock.Anything, "stale").
			Return(nil, token.ErrInvalidRefreshToken).Once()

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/refresh", `{"refresh_token":"stale"}`), rec)

		require.NoError(t, routers.Refresh(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/refresh", `{}`), rec)

		require.NoError(t, routers.Refresh(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListUsers(t *testing.T) {
	e, _, userService, routers := setup()

	t.Run("paging and search pass through", func(t *testing.T) {
		userService.On("List", mock.Anything, 2, 5, "ali").
			Return(models.NewPage([]models.UserProfile{{ID: 1, FirstName: "Alice"}}, 11, 2, 5), nil).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=2&items_per_page=5&search=ali", nil)
		c := e.NewContext(req, rec)

		require.NoError(t, routers.ListUsers(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var page models.Page
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, 11, page.Total)
		assert.Equal(t, 3, page.LastPage)
		userService.AssertExpectations(t)
	})

	t.Run("malformed paging counts as absent", func(t *testing.T) {
		userService.On("List", mock.Anything, 0, 0, "").
			Return(models.NewPage(nil, 0, 1, 10), nil).Once()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=abc&items_per_page=xyz", nil)
		c := e.NewContext(req, rec)

		require.NoError(t, routers.ListUsers(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var page models.Page
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, 1, page.CurrentPage)
		userService.AssertExpectations(t)
	})
}

func TestCreateUser_Conflict(t *testing.T) {
	e, _, userService, routers := setup()

	userService.On("CreateUser", mock.Anything, mock.Anything).
		Return(models.User{}, user.ErrUserExists).Once()

	body := `{"first_name":"Alice","last_name":"Smith","email":"alice@example.com","password":"password123"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/users", body), rec)

	require.NoError(t, routers.CreateUser(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetUser(t *testing.T) {
	e, _, userService, routers := setup()

	userService.On("GetUser", mock.Anything, int64(7)).
		Return(models.User{ID: 7, FirstName: "Alice", Avatar: "avatars/7/pic.png"}, nil).Once()
	userService.On("AvatarURL", mock.Anything, "avatars/7/pic.png").
		Return("https://cdn.test/avatars/7/pic.png").Once()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetPath("/api/v1/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, routers.GetUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://cdn.test/avatars/7/pic.png")
	userService.AssertExpectations(t)
}

func TestGetUser_NotFound(t *testing.T) {
	e, _, userService, routers := setup()

	userService.On("GetUser", mock.Anything, int64(99)).
		Return(models.User{}, user.ErrUserNotFound).Once()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetPath("/api/v1/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, routers.GetUser(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadAvatar(t *testing.T) {
	e, _, userService, routers := setup()

	multipartRequest := func(t *testing.T) *http.Request {
		t.Helper()

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", "pic.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/avatar", &buf)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		return req
	}

	t.Run("no claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(multipartRequest(t), rec)

		require.NoError(t, routers.UploadAvatar(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("uploaded through the auth gate", func(t *testing.T) {
		userService.On("UploadAvatar", mock.Anything, int64(42), mock.Anything).
			Return("avatars/42/pic.png", nil).Once()

		cfg := jwtlib.Config{Secret: "access-secret", TTL: 15 * time.Minute}
		accessToken, err := jwtlib.NewToken(42, "alice@example.com", cfg)
		require.NoError(t, err)

		req := multipartRequest(t)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+accessToken)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := middleware.JWTAuth(slog.Default(), cfg)(routers.UploadAvatar)
		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "avatars/42/pic.png")
	})
}
