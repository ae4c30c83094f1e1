package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
)

const userFields = "id, fio, username, password, role, email, telegram_chat_id, created_at"

type UserRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, user *entities.User) error
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByIDInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByRole(ctx context.Context, role string) ([]entities.User, error)
	GetUsers(ctx context.Context) ([]entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.ID, &u.Fio, &u.Username, &u.Password, &u.Role, &u.Email, &u.TelegramChatID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateInTx(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	query := `
		INSERT INTO users (fio, username, password, role, email, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, query,
		user.Fio, user.Username, user.Password, user.Role, user.Email, user.TelegramChatID,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя: %w", mapPgError(err))
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, q querier, where string, arg interface{}) (*entities.User, error) {
	user, err := scanUser(q.QueryRow(ctx, `SELECT `+userFields+` FROM users WHERE `+where, arg))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("пользователь %v", arg))
	}
	return user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, r.storage, "id = $1", id)
}

func (r *UserRepository) FindUserByIDInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error) {
	return r.findOne(ctx, pick(r.storage, tx), "id = $1", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, r.storage, "username = $1", username)
}

func (r *UserRepository) FindByRole(ctx context.Context, role string) ([]entities.User, error) {
	return r.list(ctx, `SELECT `+userFields+` FROM users WHERE role = $1 ORDER BY id`, role)
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	return r.list(ctx, `SELECT `+userFields+` FROM users ORDER BY id`)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]entities.User, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
