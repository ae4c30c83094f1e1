package repositories

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
)

// StatusHistoryItem - запись истории вместе с ФИО автора.
type StatusHistoryItem struct {
	entities.StatusHistory
	ActorFio null.String `json:"actor_fio" db:"actor_fio"`
}

// Только вставка и чтение: история не редактируется.
type StatusHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.StatusHistory) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]StatusHistoryItem, error)
}

type StatusHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewStatusHistoryRepository(storage *pgxpool.Pool) StatusHistoryRepositoryInterface {
	return &StatusHistoryRepository{storage: storage}
}

func (r *StatusHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.StatusHistory) error {
	query := `
		INSERT INTO status_history (order_id, status, actor_id, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, query, entry.OrderID, entry.Status, entry.ActorID, entry.Comment).
		Scan(&entry.ID, &entry.CreatedAt)
	return mapPgError(err)
}

func (r *StatusHistoryRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]StatusHistoryItem, error) {
	query := `
		SELECT h.id, h.order_id, h.status, h.actor_id, h.comment, h.created_at, u.fio AS actor_fio
		FROM status_history h
		LEFT JOIN users u ON h.actor_id = u.id
		WHERE h.order_id = $1
		ORDER BY h.id ASC`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StatusHistoryItem, 0)
	for rows.Next() {
		var h StatusHistoryItem
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ActorID, &h.Comment, &h.CreatedAt, &h.ActorFio); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
