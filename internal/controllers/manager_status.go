package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/services"
	"service-crm/pkg/utils"
)

type ManagerStatusController struct {
	managerService services.ManagerStatusServiceInterface
	logger         *zap.Logger
}

func NewManagerStatusController(managerService services.ManagerStatusServiceInterface, logger *zap.Logger) *ManagerStatusController {
	return &ManagerStatusController{managerService: managerService, logger: logger}
}

func (c *ManagerStatusController) List(ctx echo.Context) error {
	res, err := c.managerService.List(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статусы менеджеров получены", http.StatusOK)
}

func (c *ManagerStatusController) GetStatus(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.managerService.GetStatus(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус менеджера получен", http.StatusOK)
}

func (c *ManagerStatusController) SetStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.SetManagerStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.managerService.SetStatus(reqCtx, claims.UserID, id, payload.Status)
	if err != nil {
		c.logger.Warn("SetStatus: статус менеджера не изменен",
			zap.Uint64("managerID", id), zap.String("status", payload.Status), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус менеджера изменен", http.StatusOK)
}
