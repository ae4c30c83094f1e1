package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/types"
	"service-crm/pkg/utils"
)

// BlacklistServiceInterface - реестр черного списка. Ключ - точное совпадение
// нормализованных ФИО и телефона. Изменения выполняются в транзакции вызывающего.
type BlacklistServiceInterface interface {
	// LockIdentity сериализует операции над одной парой (ФИО, телефон) до конца транзакции.
	LockIdentity(ctx context.Context, tx pgx.Tx, clientName, phone string) error
	LockEntry(ctx context.Context, tx pgx.Tx, entryID uint64) (*entities.BlacklistEntry, error)
	// Lookup возвращает nil без ошибки, если записи нет. tx может быть nil.
	Lookup(ctx context.Context, tx pgx.Tx, clientName, phone string) (*entities.BlacklistEntry, error)
	Upsert(ctx context.Context, tx pgx.Tx, clientName, phone, reason string) (*entities.BlacklistEntry, error)
	AttachOrder(ctx context.Context, tx pgx.Tx, entryID uint64, orderID uuid.UUID) error
	Delete(ctx context.Context, tx pgx.Tx, entryID uint64) error
	RelatedOrders(ctx context.Context, tx pgx.Tx, entryID uint64) ([]uuid.UUID, error)

	// LookupIdentity нормализует сырой ввод перед поиском.
	LookupIdentity(ctx context.Context, clientName, phone string) (*entities.BlacklistEntry, error)
	FindEntry(ctx context.Context, entryID uint64) (*entities.BlacklistEntry, error)
	GetEntries(ctx context.Context, filter types.Filter) ([]entities.BlacklistEntry, uint64, error)
}

type BlacklistService struct {
	repo   repositories.BlacklistRepositoryInterface
	logger *zap.Logger
}

func NewBlacklistService(repo repositories.BlacklistRepositoryInterface, logger *zap.Logger) BlacklistServiceInterface {
	return &BlacklistService{repo: repo, logger: logger}
}

func (s *BlacklistService) LockIdentity(ctx context.Context, tx pgx.Tx, clientName, phone string) error {
	return s.repo.LockIdentityInTx(ctx, tx, clientName, phone)
}

func (s *BlacklistService) LockEntry(ctx context.Context, tx pgx.Tx, entryID uint64) (*entities.BlacklistEntry, error) {
	return s.repo.FindForUpdateInTx(ctx, tx, entryID)
}

func (s *BlacklistService) Lookup(ctx context.Context, tx pgx.Tx, clientName, phone string) (*entities.BlacklistEntry, error) {
	entry, err := s.repo.FindByIdentity(ctx, tx, clientName, phone)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return entry, err
}

func (s *BlacklistService) Upsert(ctx context.Context, tx pgx.Tx, clientName, phone, reason string) (*entities.BlacklistEntry, error) {
	if reason == "" {
		return nil, apperrors.NewInvalidInputError("причина блокировки обязательна")
	}
	return s.repo.UpsertInTx(ctx, tx, clientName, phone, reason)
}

func (s *BlacklistService) AttachOrder(ctx context.Context, tx pgx.Tx, entryID uint64, orderID uuid.UUID) error {
	return s.repo.AttachOrderInTx(ctx, tx, entryID, orderID)
}

func (s *BlacklistService) Delete(ctx context.Context, tx pgx.Tx, entryID uint64) error {
	return s.repo.DeleteInTx(ctx, tx, entryID)
}

func (s *BlacklistService) RelatedOrders(ctx context.Context, tx pgx.Tx, entryID uint64) ([]uuid.UUID, error) {
	return s.repo.RelatedOrders(ctx, tx, entryID)
}

func (s *BlacklistService) LookupIdentity(ctx context.Context, clientName, phone string) (*entities.BlacklistEntry, error) {
	normalizedPhone, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return s.Lookup(ctx, nil, utils.NormalizeClientName(clientName), normalizedPhone)
}

func (s *BlacklistService) FindEntry(ctx context.Context, entryID uint64) (*entities.BlacklistEntry, error) {
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	related, err := s.repo.RelatedOrders(ctx, nil, entryID)
	if err != nil {
		return nil, fmt.Errorf("связанные заявки записи %d: %w", entryID, err)
	}
	entry.RelatedOrders = related
	return entry, nil
}

func (s *BlacklistService) GetEntries(ctx context.Context, filter types.Filter) ([]entities.BlacklistEntry, uint64, error) {
	return s.repo.GetEntries(ctx, filter)
}
