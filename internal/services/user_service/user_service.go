package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"

	"user_hub/internal/domain/models"
	"user_hub/internal/lib/logger/sl"
	"user_hub/internal/repository"
	"user_hub/internal/storage"
	"user_hub/internal/transport/http/dto"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

type Enricher interface {
	Enrich(ctx context.Context, rows []models.UserProfile) []models.UserProfile
}

type FileUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

type UserService struct {
	log      *slog.Logger
	repo     repository.UserRepository
	enricher Enricher
	uploader FileUploader
}

func NewUserService(log *slog.Logger, repo repository.UserRepository, enricher Enricher, uploader FileUploader) *UserService {
	return &UserService{
		log:      log,
		repo:     repo,
		enricher: enricher,
		uploader: uploader,
	}
}

// List returns one page of the directory. Rows are fetched newest first,
// projected away from credential fields, then run through the enricher to
// attach avatar URLs before the page metadata is assembled around them.
func (s *UserService) List(ctx context.Context, page, perPage int, search string) (*models.Page, error) {
	const op = "user_service.List"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("page", page),
		slog.String("search", search),
	)

	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	offset := (page - 1) * perPage

	rows, total, err := s.repo.SearchUsers(ctx, search, uint64(perPage), uint64(offset))
	if err != nil {
		log.Error("failed to search users", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profiles := make([]models.UserProfile, len(rows))
	for i, user := range rows {
		profiles[i] = user.Profile()
	}

	profiles = s.enricher.Enrich(ctx, profiles)

	return models.NewPage(profiles, total, page, perPage), nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	const op = "user_service.GetUser"

	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		s.log.Error("failed to get user", slog.String("op", op), sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, input dto.UserRegisterInput) (models.User, error) {
	const op = "user_service.CreateUser"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", input.Email),
	)

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
			log.Warn("user already exists", sl.Err(err))

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user created", slog.Int64("user_id", saved.ID))

	return saved, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, input dto.UserUpdateInput) error {
	const op = "user_service.UpdateUser"

	updates := input.Updates()
	if len(updates) == 0 {
		return nil
	}

	affected, err := s.repo.UpdateUser(ctx, id, updates)
	if err != nil {
		s.log.Error("failed to update user", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	const op = "user_service.DeleteUser"

	affected, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		s.log.Error("failed to delete user", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	s.log.Info("user deleted", slog.String("op", op), slog.Int64("user_id", id))

	return nil
}

// UploadAvatar stores the file under a fresh key and records the key on the
// account. The previous object, if any, is left in place; its key simply
// stops being referenced.
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	const op = "user_service.UploadAvatar"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
		slog.String("filename", file.Filename),
	)

	src, err := file.Open()
	if err != nil {
		log.Error("failed to open uploaded file", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer src.Close()

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.New().String(), filepath.Ext(file.Filename))

	if err := s.uploader.Upload(ctx, key, file.Header.Get("Content-Type"), src); err != nil {
		log.Error("failed to upload avatar", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateAvatar(ctx, userID, key); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		log.Error("failed to persist avatar key", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("avatar uploaded", slog.String("key", key))

	return key, nil
}

// AvatarURL resolves one stored avatar key into a retrieval URL through the
// same enrichment path the listing uses, cache and timeout included. An empty
// key or a failed resolution yields an empty URL.
func (s *UserService) AvatarURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}

	rows := s.enricher.Enrich(ctx, []models.UserProfile{{Avatar: key}})

	return rows[0].AvatarURL
}
