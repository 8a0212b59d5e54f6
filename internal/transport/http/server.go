package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"user_hub/internal/domain/models"
	"user_hub/internal/lib/logger/sl"
	"user_hub/internal/middleware"
	token "user_hub/internal/services/token_service"
	user "user_hub/internal/services/user_service"
	"user_hub/internal/transport/http/dto"
	"user_hub/internal/transport/http/dto/request"
	"user_hub/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type TokenService interface {
	Register(ctx context.Context, input dto.UserRegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

type UserService interface {
	List(ctx context.Context, page, perPage int, search string) (*models.Page, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, input dto.UserRegisterInput) (models.User, error)
	UpdateUser(ctx context.Context, id int64, input dto.UserUpdateInput) error
	DeleteUser(ctx context.Context, id int64) error
	UploadAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error)
	AvatarURL(ctx context.Context, key string) string
}

type Routers struct {
	log          *slog.Logger
	TokenService TokenService
	UserService  UserService
}

func NewRouter(log *slog.Logger, tokenService TokenService, userService UserService) *Routers {
	return &Routers{
		log:          log,
		TokenService: tokenService,
		UserService:  userService,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UserRegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UserRegisterInput

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_register_request", err.Error()))
	}

	saved, err := r.TokenService.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, token.ErrUserExist) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("user registered", slog.Int64("user_id", saved.ID))

	return c.JSON(http.StatusCreated, response.SuccessResponse(saved.Profile()))
}

// Login godoc
// @Summary Log in with email and password
// @Description Returns an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.TokenService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, token.ErrInvalidCredentials) {
			// one message for every credential cause, no email-existence oracle
			log.Warn("login failed", sl.Err(err))
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Refresh godoc
// @Summary Rotate a refresh token into a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	pair, err := r.TokenService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("refresh rejected", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrInvalidRefreshToken)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// ListUsers godoc
// @Summary List users
// @Description Paginated, searchable directory listing with avatar URLs.
// @Tags users
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param items_per_page query int false "Page size (default 10)"
// @Param search query string false "Substring matched against name and email"
// @Success 200 {object} models.Page
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/users [get]
func (r *Routers) ListUsers(c echo.Context) error {
	const op = "http.routers.ListUsers"

	log := r.log.With(
		slog.String("op", op),
	)

	var query dto.ListUsersQuery
	if err := c.Bind(&query); err != nil {
		log.Warn("invalid query parameters", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pageNum, perPage := query.Paging()

	page, err := r.UserService.List(c.Request().Context(), pageNum, perPage, query.Search)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, page)
}

// GetUser godoc
// @Summary Get a user by id
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/users/{id} [get]
func (r *Routers) GetUser(c echo.Context) error {
	const op = "http.routers.GetUser"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid user id"))
	}

	found, err := r.UserService.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		}

		log.Error("failed to get user", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	profile := found.Profile()
	profile.AvatarURL = r.UserService.AvatarURL(c.Request().Context(), profile.Avatar)

	return c.JSON(http.StatusOK, profile)
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UserRegisterInput true "User data"
// @Success 201 {object} models.UserProfile
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/users [post]
func (r *Routers) CreateUser(c echo.Context) error {
	const op = "http.routers.CreateUser"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UserRegisterInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	saved, err := r.UserService.CreateUser(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrUserExists) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("failed to create user", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, saved.Profile())
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param request body dto.UserUpdateInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/users/{id} [put]
func (r *Routers) UpdateUser(c echo.Context) error {
	const op = "http.routers.UpdateUser"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid user id"))
	}

	var req dto.UserUpdateInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.UserService.UpdateUser(c.Request().Context(), id, req); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		}

		log.Error("failed to update user", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/users/{id} [delete]
func (r *Routers) DeleteUser(c echo.Context) error {
	const op = "http.routers.DeleteUser"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid user id"))
	}

	if err := r.UserService.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		}

		log.Error("failed to delete user", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// UploadAvatar godoc
// @Summary Upload an avatar for the authenticated user
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Avatar image"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/users/avatar [post]
func (r *Routers) UploadAvatar(c echo.Context) error {
	const op = "http.routers.UploadAvatar"

	log := r.log.With(
		slog.String("op", op),
	)

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrorResponseWithDetails("unauthorized", "authentication required"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("empty file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "file is required"))
	}

	key, err := r.UserService.UploadAvatar(c.Request().Context(), claims.UID, file)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrUserNotFound)
		}

		log.Error("failed to upload avatar", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("avatar uploaded", slog.Int64("user_id", claims.UID), slog.String("key", key))

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"avatar": key}))
}
