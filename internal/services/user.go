package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	"service-crm/pkg/constants"
	"service-crm/pkg/utils"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	GetUsers(ctx context.Context, role string) ([]entities.User, error)
}

type UserService struct {
	txManager  repositories.TxManagerInterface
	userRepo   repositories.UserRepositoryInterface
	statusRepo repositories.ManagerStatusRepositoryInterface
	logger     *zap.Logger
}

func NewUserService(
	txManager repositories.TxManagerInterface,
	userRepo repositories.UserRepositoryInterface,
	statusRepo repositories.ManagerStatusRepositoryInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		txManager:  txManager,
		userRepo:   userRepo,
		statusRepo: statusRepo,
		logger:     logger,
	}
}

// CreateUser создает пользователя; для менеджера в той же транзакции появляется запись статуса free.
func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error) {
	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Fio:            strings.TrimSpace(payload.Fio),
		Username:       strings.TrimSpace(payload.Username),
		Password:       hash,
		Role:           payload.Role,
		Email:          payload.Email,
		TelegramChatID: payload.TelegramChatID,
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.userRepo.CreateInTx(ctx, tx, user); err != nil {
			return err
		}
		if user.Role == constants.RoleManager {
			return s.statusRepo.EnsureInTx(ctx, tx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("пользователь создан", zap.Uint64("userID", user.ID), zap.String("role", user.Role))
	return user, nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return s.userRepo.FindUserByID(ctx, id)
}

func (s *UserService) GetUsers(ctx context.Context, role string) ([]entities.User, error) {
	if role != "" {
		return s.userRepo.FindByRole(ctx, role)
	}
	return s.userRepo.GetUsers(ctx)
}
