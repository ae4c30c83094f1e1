package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/entities"
)

type NotificationLogRepositoryInterface interface {
	// Create пишет запись вне транзакции заявки: журнал фиксируется всегда.
	Create(ctx context.Context, entry *entities.NotificationLog) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]entities.NotificationLog, error)
}

type NotificationLogRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationLogRepository(storage *pgxpool.Pool) NotificationLogRepositoryInterface {
	return &NotificationLogRepository{storage: storage}
}

func (r *NotificationLogRepository) Create(ctx context.Context, entry *entities.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (order_id, recipient_id, message_type, message_text, is_sent, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.storage.QueryRow(ctx, query,
		entry.OrderID, entry.RecipientID, entry.MessageType, entry.MessageText, entry.IsSent, entry.Error,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи журнала уведомлений: %w", mapPgError(err))
	}
	return nil
}

func (r *NotificationLogRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]entities.NotificationLog, error) {
	query := `
		SELECT id, order_id, recipient_id, message_type, message_text, is_sent, error, created_at
		FROM notification_logs
		WHERE order_id = $1
		ORDER BY id ASC`
	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]entities.NotificationLog, 0)
	for rows.Next() {
		var l entities.NotificationLog
		if err := rows.Scan(&l.ID, &l.OrderID, &l.RecipientID, &l.MessageType, &l.MessageText, &l.IsSent, &l.Error, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
