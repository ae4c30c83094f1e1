package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/internal/repositories"
	"service-crm/pkg/config"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/service"
	"service-crm/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cfg        config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	if err := s.checkLockout(ctx, payload.Login); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, payload.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.handleFailedLoginAttempt(ctx, payload.Login)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, payload.Login)
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, payload.Login)

	s.logger.Info("пользователь вошел в систему", zap.Uint64("userID", user.ID), zap.String("role", user.Role))
	return s.issue(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}
	// Роль могла измениться с момента выдачи токена.
	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *entities.User) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}
	return &dto.AuthResponseDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.ShortUserDTO{ID: user.ID, Fio: user.Fio, Role: user.Role},
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, login string) error {
	locked, err := s.cacheRepo.Exists(ctx, fmt.Sprintf(constants.CacheKeyLockout, login))
	if err != nil {
		// Недоступный Redis не должен блокировать вход.
		s.logger.Warn("не удалось проверить блокировку входа", zap.String("login", login), zap.Error(err))
		return nil
	}
	if locked {
		return apperrors.ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, login string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, login)
	attempts, err := s.cacheRepo.IncrWithTTL(ctx, attemptsKey, s.cfg.LockoutDuration)
	if err != nil {
		s.logger.Warn("не удалось учесть попытку входа", zap.String("login", login), zap.Error(err))
		return
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		_ = s.cacheRepo.Set(ctx, fmt.Sprintf(constants.CacheKeyLockout, login), "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("вход заблокирован после неудачных попыток", zap.String("login", login), zap.Int64("attempts", attempts))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, login string) {
	_ = s.cacheRepo.Del(ctx,
		fmt.Sprintf(constants.CacheKeyLoginAttempts, login),
		fmt.Sprintf(constants.CacheKeyLockout, login),
	)
}
