package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
)

// StatusHistoryServiceInterface - журнал смен статусов. Только добавление и чтение.
type StatusHistoryServiceInterface interface {
	Append(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status string, actorID *uint64, comment string) (*entities.StatusHistory, error)
	ListFor(ctx context.Context, orderID uuid.UUID) ([]repositories.StatusHistoryItem, error)
}

type StatusHistoryService struct {
	repo   repositories.StatusHistoryRepositoryInterface
	logger *zap.Logger
}

func NewStatusHistoryService(repo repositories.StatusHistoryRepositoryInterface, logger *zap.Logger) StatusHistoryServiceInterface {
	return &StatusHistoryService{repo: repo, logger: logger}
}

func (s *StatusHistoryService) Append(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status string, actorID *uint64, comment string) (*entities.StatusHistory, error) {
	if !constants.IsKnownStatus(status) {
		return nil, apperrors.NewInvalidInputError("неизвестный статус: %s", status)
	}
	entry := &entities.StatusHistory{
		OrderID: orderID,
		Status:  status,
		ActorID: actorID,
		Comment: comment,
	}
	if err := s.repo.CreateInTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("запись истории заявки %s: %w", orderID, err)
	}
	return entry, nil
}

func (s *StatusHistoryService) ListFor(ctx context.Context, orderID uuid.UUID) ([]repositories.StatusHistoryItem, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}
