package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"user_hub/internal/domain/models"
	jwtlib "user_hub/internal/lib/jwt"
	"user_hub/internal/lib/logger/sl"
	"user_hub/internal/repository"
	"user_hub/internal/storage"
	"user_hub/internal/transport/http/dto"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserExist           = errors.New("user already exist")
)

type TokenService struct {
	log        *slog.Logger
	repo       repository.UserRepository
	accessCfg  jwtlib.Config
	refreshCfg jwtlib.Config
}

func NewTokenService(log *slog.Logger, repo repository.UserRepository, accessCfg, refreshCfg jwtlib.Config) *TokenService {
	return &TokenService{
		log:        log,
		repo:       repo,
		accessCfg:  accessCfg,
		refreshCfg: refreshCfg,
	}
}

func (s *TokenService) Register(ctx context.Context, input dto.UserRegisterInput) (models.User, error) {
	const op = "token_service.Register"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", input.Email),
	)

	log.Info("register user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := input.ToDomain(passHash)
	user.RefreshToken = models.RefreshTokenPlaceholder

	saved, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exist", sl.Err(err))

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExist)
		}

		log.Error("failed to save user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("user_id", saved.ID))

	return saved, nil
}

// Login checks the credentials and issues a fresh token pair. An unknown email
// and a wrong password fail identically so the endpoint cannot be used to
// probe which emails exist.
func (s *TokenService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "token_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login user")

	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	log.Info("user logged in successfully")

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a valid refresh token into a new pair. Beyond signature and
// expiry, the presented string must equal the one currently stored on the
// account, so at most one refresh token per account is live at any time.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "token_service.Refresh"

	log := s.log.With(
		slog.String("op", op),
	)

	claims, err := jwtlib.ParseToken(refreshToken, s.refreshCfg)
	if err != nil {
		log.Warn("refresh token verification failed", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	user, err := s.repo.UserByEmail(ctx, claims.Email)
	if err != nil {
		log.Warn("failed to get user for refresh", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	if user.RefreshToken != refreshToken {
		log.Warn("presented refresh token superseded by a later rotation")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	log.Info("refresh token rotated", slog.Int64("user_id", user.ID))

	return s.issueTokenPair(ctx, user)
}

// issueTokenPair signs both tokens and persists the refresh token on the
// account, invalidating whatever was stored before. Two concurrent calls for
// one account race last-write-wins; the loser's pair dies on its next refresh.
func (s *TokenService) issueTokenPair(ctx context.Context, user models.User) (*models.TokenPair, error) {
	const op = "token_service.issueTokenPair"

	accessToken, err := jwtlib.NewToken(user.ID, user.Email, s.accessCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := jwtlib.NewToken(user.ID, user.Email, s.refreshCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.Email, refreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
