package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/services"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (c *UserController) CreateUser(ctx echo.Context) error {
	var payload dto.CreateUserDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	user, err := c.userService.CreateUser(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateUser: ошибка создания пользователя", zap.String("username", payload.Username), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, user, "Пользователь создан", http.StatusCreated)
}

// GetUsers: ?role=manager сужает список.
func (c *UserController) GetUsers(ctx echo.Context) error {
	role := ctx.QueryParam("role")
	if role != "" && !constants.IsKnownRole(role) {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("неизвестная роль: %s", role))
	}
	users, err := c.userService.GetUsers(ctx.Request().Context(), role)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, users, "Пользователи получены", http.StatusOK)
}

func (c *UserController) FindUser(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	user, err := c.userService.FindUser(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, user, "Пользователь получен", http.StatusOK)
}
