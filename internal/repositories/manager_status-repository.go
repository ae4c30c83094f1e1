package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
	"service-crm/pkg/constants"
)

// ManagerStatusItem - статус менеджера вместе с ФИО для списков.
type ManagerStatusItem struct {
	entities.ManagerStatus
	Fio string `json:"fio" db:"fio"`
}

type ManagerStatusRepositoryInterface interface {
	// EnsureInTx создает запись free, если ее еще нет.
	EnsureInTx(ctx context.Context, tx pgx.Tx, userID uint64) error
	// LockInTx блокирует запись статуса до конца транзакции.
	LockInTx(ctx context.Context, tx pgx.Tx, userID uint64) (*entities.ManagerStatus, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, userID uint64, status string) (*entities.ManagerStatus, error)
	FindByUserID(ctx context.Context, userID uint64) (*entities.ManagerStatus, error)
	List(ctx context.Context) ([]ManagerStatusItem, error)
}

type ManagerStatusRepository struct {
	storage *pgxpool.Pool
}

func NewManagerStatusRepository(storage *pgxpool.Pool) ManagerStatusRepositoryInterface {
	return &ManagerStatusRepository{storage: storage}
}

func (r *ManagerStatusRepository) EnsureInTx(ctx context.Context, tx pgx.Tx, userID uint64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO manager_statuses (user_id, status) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, constants.ManagerFree)
	if err != nil {
		return fmt.Errorf("ошибка создания статуса менеджера: %w", mapPgError(err))
	}
	return nil
}

func (r *ManagerStatusRepository) LockInTx(ctx context.Context, tx pgx.Tx, userID uint64) (*entities.ManagerStatus, error) {
	var s entities.ManagerStatus
	err := tx.QueryRow(ctx,
		`SELECT user_id, status, updated_at FROM manager_statuses WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&s.UserID, &s.Status, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("статус менеджера %d", userID))
	}
	return &s, nil
}

func (r *ManagerStatusRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, userID uint64, status string) (*entities.ManagerStatus, error) {
	var s entities.ManagerStatus
	err := tx.QueryRow(ctx,
		`UPDATE manager_statuses SET status = $2, updated_at = NOW() WHERE user_id = $1 RETURNING user_id, status, updated_at`,
		userID, status,
	).Scan(&s.UserID, &s.Status, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("статус менеджера %d", userID))
	}
	return &s, nil
}

func (r *ManagerStatusRepository) FindByUserID(ctx context.Context, userID uint64) (*entities.ManagerStatus, error) {
	var s entities.ManagerStatus
	err := r.storage.QueryRow(ctx,
		`SELECT user_id, status, updated_at FROM manager_statuses WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.Status, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("статус менеджера %d", userID))
	}
	return &s, nil
}

func (r *ManagerStatusRepository) List(ctx context.Context) ([]ManagerStatusItem, error) {
	query := `
		SELECT ms.user_id, ms.status, ms.updated_at, u.fio
		FROM manager_statuses ms
		JOIN users u ON u.id = ms.user_id
		ORDER BY u.fio, ms.user_id`
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статусов менеджеров: %w", err)
	}
	defer rows.Close()

	items := make([]ManagerStatusItem, 0)
	for rows.Next() {
		var it ManagerStatusItem
		if err := rows.Scan(&it.UserID, &it.Status, &it.UpdatedAt, &it.Fio); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
