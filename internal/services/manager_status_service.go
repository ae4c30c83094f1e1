package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
)

type ManagerStatusServiceInterface interface {
	GetStatus(ctx context.Context, managerID uint64) (*entities.ManagerStatus, error)
	// SetStatus - ручная смена статуса. Запрещена, пока у менеджера есть активная заявка.
	SetStatus(ctx context.Context, actorID, managerID uint64, status string) (*entities.ManagerStatus, error)
	List(ctx context.Context) ([]repositories.ManagerStatusItem, error)

	// Внутри транзакции движка заявок.
	LockInTx(ctx context.Context, tx pgx.Tx, managerIDs ...uint64) (map[uint64]*entities.ManagerStatus, error)
	SetStatusInTx(ctx context.Context, tx pgx.Tx, managerID uint64, status string) (*entities.ManagerStatus, error)
	ReleaseInTx(ctx context.Context, tx pgx.Tx, managerID uint64, exceptOrderID uuid.UUID) (*entities.ManagerStatus, error)
}

type ManagerStatusService struct {
	txManager  repositories.TxManagerInterface
	statusRepo repositories.ManagerStatusRepositoryInterface
	orderRepo  repositories.OrderRepositoryInterface
	userRepo   repositories.UserRepositoryInterface
	logger     *zap.Logger
}

func NewManagerStatusService(
	txManager repositories.TxManagerInterface,
	statusRepo repositories.ManagerStatusRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) ManagerStatusServiceInterface {
	return &ManagerStatusService{
		txManager:  txManager,
		statusRepo: statusRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (s *ManagerStatusService) GetStatus(ctx context.Context, managerID uint64) (*entities.ManagerStatus, error) {
	return s.statusRepo.FindByUserID(ctx, managerID)
}

func (s *ManagerStatusService) List(ctx context.Context) ([]repositories.ManagerStatusItem, error) {
	return s.statusRepo.List(ctx)
}

func (s *ManagerStatusService) SetStatus(ctx context.Context, actorID, managerID uint64, status string) (*entities.ManagerStatus, error) {
	if !constants.IsManualManagerStatus(status) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidManagerStatus, status)
	}

	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case constants.RoleCoordinator, constants.RoleAdmin:
	case constants.RoleManager:
		if actor.ID != managerID {
			return nil, fmt.Errorf("%w: менеджер меняет только свой статус", apperrors.ErrForbidden)
		}
	default:
		return nil, apperrors.ErrForbidden
	}

	var updated *entities.ManagerStatus
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		manager, err := s.userRepo.FindUserByIDInTx(ctx, tx, managerID)
		if err != nil {
			return err
		}
		if manager.Role != constants.RoleManager {
			return fmt.Errorf("%w: пользователь %d", apperrors.ErrNotManager, managerID)
		}

		if _, err := s.LockInTx(ctx, tx, managerID); err != nil {
			return err
		}
		active, err := s.orderRepo.CountActiveByManagerInTx(ctx, tx, managerID, uuid.Nil)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: менеджер %d", apperrors.ErrHasActiveOrder, managerID)
		}

		updated, err = s.statusRepo.UpdateInTx(ctx, tx, managerID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("статус менеджера изменен вручную",
		zap.Uint64("manager_id", managerID),
		zap.Uint64("actor_id", actorID),
		zap.String("status", status),
	)
	return updated, nil
}

// LockInTx создает недостающие записи и блокирует их по возрастанию id,
// чтобы параллельные транзакции брали блокировки в одном порядке.
func (s *ManagerStatusService) LockInTx(ctx context.Context, tx pgx.Tx, managerIDs ...uint64) (map[uint64]*entities.ManagerStatus, error) {
	ids := append([]uint64(nil), managerIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[uint64]*entities.ManagerStatus, len(ids))
	for _, id := range ids {
		if _, ok := locked[id]; ok {
			continue
		}
		if err := s.statusRepo.EnsureInTx(ctx, tx, id); err != nil {
			return nil, err
		}
		st, err := s.statusRepo.LockInTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = st
	}
	return locked, nil
}

func (s *ManagerStatusService) SetStatusInTx(ctx context.Context, tx pgx.Tx, managerID uint64, status string) (*entities.ManagerStatus, error) {
	return s.statusRepo.UpdateInTx(ctx, tx, managerID, status)
}

// ReleaseInTx освобождает менеджера, если он busy и других активных заявок нет.
// Выставленные вручную статусы не трогаются. Запись должна быть уже заблокирована.
func (s *ManagerStatusService) ReleaseInTx(ctx context.Context, tx pgx.Tx, managerID uint64, exceptOrderID uuid.UUID) (*entities.ManagerStatus, error) {
	current, err := s.statusRepo.LockInTx(ctx, tx, managerID)
	if err != nil {
		return nil, err
	}
	if current.Status != constants.ManagerBusy {
		return current, nil
	}
	active, err := s.orderRepo.CountActiveByManagerInTx(ctx, tx, managerID, exceptOrderID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return current, nil
	}
	return s.statusRepo.UpdateInTx(ctx, tx, managerID, constants.ManagerFree)
}
