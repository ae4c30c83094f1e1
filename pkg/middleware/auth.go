package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/pkg/contextkeys"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/service"
	"service-crm/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth проверяет access-токен и кладет UserClaims в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess)
		}

		userClaims := &dto.UserClaims{UserID: claims.UserID, Role: claims.Role}
		ctx := context.WithValue(c.Request().Context(), contextkeys.UserClaimsKey, userClaims)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: пользователь аутентифицирован",
			zap.Uint64("userID", claims.UserID), zap.String("role", claims.Role))
		return next(c)
	}
}

// RequireRoles пропускает только пользователей с одной из ролей. Ставится после Auth.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := utils.GetClaimsFromContext(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err)
			}
			if !utils.HasRole(claims, roles...) {
				return utils.ErrorResponse(c, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}
