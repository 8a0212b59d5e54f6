package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user_hub/internal/domain/models"
	"user_hub/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolationCode = "23505"

var userColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"password",
	"status",
	"refresh_token",
	"avatar",
	"created_at",
	"updated_at",
}

// listing columns: password digest and refresh token never leave the store
var listColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"status",
	"avatar",
	"created_at",
	"updated_at",
}

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *UserRepo) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	const op = "repository.user_repository.SaveUser"

	query, args, err := r.sb.Insert("users").
		Columns(
			"first_name",
			"last_name",
			"email",
			"password",
			"status",
			"refresh_token",
		).
		Values(
			user.FirstName,
			user.LastName,
			user.Email,
			user.Password,
			user.Status,
			user.RefreshToken,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "repository.user_repository.UserByEmail"

	query, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.scanUser(ctx, op, query, args)
}

func (r *UserRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	const op = "repository.user_repository.UserByID"

	query, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.scanUser(ctx, op, query, args)
}

func (r *UserRepo) scanUser(ctx context.Context, op, query string, args []interface{}) (models.User, error) {
	var user models.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.Status,
		&user.RefreshToken,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) UpdateRefreshToken(ctx context.Context, email, token string) error {
	const op = "repository.user_repository.UpdateRefreshToken"

	query, args, err := r.sb.Update("users").
		Set("refresh_token", token).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepo) UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) (int64, error) {
	const op = "repository.user_repository.UpdateUser"

	query, args, err := r.sb.Update("users").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, id int64, key string) error {
	const op = "repository.user_repository.UpdateAvatar"

	affected, err := r.UpdateUser(ctx, id, map[string]interface{}{"avatar": key})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepo) DeleteUser(ctx context.Context, id int64) (int64, error) {
	const op = "repository.user_repository.DeleteUser"

	query, args, err := r.sb.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

// SearchUsers returns one listing page plus the total match count. An empty
// term matches every user; otherwise the term is substring-matched against
// first name, last name and email, any of which qualifies the row.
func (r *UserRepo) SearchUsers(ctx context.Context, term string, limit, offset uint64) ([]models.User, int, error) {
	const op = "repository.user_repository.SearchUsers"

	var filter sq.Sqlizer
	if term != "" {
		pattern := "%" + term + "%"
		filter = sq.Or{
			sq.ILike{"first_name": pattern},
			sq.ILike{"last_name": pattern},
			sq.ILike{"email": pattern},
		}
	}

	countBuilder := r.sb.Select("count(*)").From("users")
	if filter != nil {
		countBuilder = countBuilder.Where(filter)
	}

	query, args, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rowsBuilder := r.sb.Select(listColumns...).
		From("users").
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset)
	if filter != nil {
		rowsBuilder = rowsBuilder.Where(filter)
	}

	query, args, err = rowsBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Status,
			&user.Avatar,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return users, total, nil
}
