package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/services"
	"service-crm/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	userService services.UserServiceInterface,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

func (c *AuthController) Login(ctx echo.Context) error {
	var payload dto.LoginDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.authService.Login(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Warn("Login: вход не выполнен", zap.String("login", payload.Login), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Вход выполнен", http.StatusOK)
}

func (c *AuthController) Refresh(ctx echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.authService.Refresh(ctx.Request().Context(), payload.RefreshToken)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Токены обновлены", http.StatusOK)
}

func (c *AuthController) Me(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	user, err := c.userService.FindUser(reqCtx, claims.UserID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, user, "Профиль получен", http.StatusOK)
}
