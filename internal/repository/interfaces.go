package repository

import (
	"context"

	"user_hub/internal/domain/models"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	UpdateRefreshToken(ctx context.Context, email, token string) error
	UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) (int64, error)
	UpdateAvatar(ctx context.Context, id int64, key string) error
	DeleteUser(ctx context.Context, id int64) (int64, error)
	SearchUsers(ctx context.Context, term string, limit, offset uint64) ([]models.User, int, error)
}
