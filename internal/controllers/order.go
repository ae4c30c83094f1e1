package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/services"
	"service-crm/pkg/types"
	"service-crm/pkg/utils"
)

type OrderController struct {
	orderService services.OrderServiceInterface
	logger       *zap.Logger
}

func NewOrderController(orderService services.OrderServiceInterface, logger *zap.Logger) *OrderController {
	return &OrderController{
		orderService: orderService,
		logger:       logger,
	}
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.CreateOrderDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	order, err := c.orderService.CreateOrder(reqCtx, claims.UserID, payload)
	if err != nil {
		c.logger.Error("CreateOrder: ошибка создания заявки", zap.Uint64("actorID", claims.UserID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.orderService.FindOrder(reqCtx, order.ID, services.OrderScope{})
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно создана", http.StatusCreated)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	filter := utils.ParseFilter(ctx.Request().URL.Query())

	res, totalCount, err := c.orderService.GetOrders(reqCtx, filter, services.ScopeFor(claims))
	if err != nil {
		c.logger.Error("GetOrders: ошибка получения списка заявок", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.PaginatedResponse(ctx, res, types.NewPagination(totalCount, filter.Page, filter.Limit), "Заявки успешно получены")
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.orderService.FindOrder(reqCtx, id, services.ScopeFor(claims))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка получена", http.StatusOK)
}

func (c *OrderController) AssignOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.AssignOrderDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if _, err := c.orderService.AssignOrder(reqCtx, id, payload.ManagerID, claims.UserID); err != nil {
		c.logger.Warn("AssignOrder: назначение не выполнено",
			zap.String("orderID", id.String()), zap.Uint64("managerID", payload.ManagerID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.orderService.FindOrder(reqCtx, id, services.OrderScope{})
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Менеджер назначен", http.StatusOK)
}

func (c *OrderController) UpdateStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.UpdateOrderStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if _, err := c.orderService.UpdateStatus(reqCtx, id, payload.Status, claims.UserID, payload.Comment); err != nil {
		c.logger.Warn("UpdateStatus: смена статуса не выполнена",
			zap.String("orderID", id.String()), zap.String("status", payload.Status), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.orderService.FindOrder(reqCtx, id, services.OrderScope{})
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус заявки изменен", http.StatusOK)
}

func (c *OrderController) AddToBlacklist(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.AddToBlacklistDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	entry, err := c.orderService.AddToBlacklist(reqCtx, id, payload.Reason, claims.UserID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, blacklistEntryToDTO(entry), "Клиент добавлен в черный список", http.StatusOK)
}

func (c *OrderController) GetHistory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.orderService.GetHistory(reqCtx, id, services.ScopeFor(claims))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "История заявки получена", http.StatusOK)
}

func (c *OrderController) GetNotifications(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.orderService.GetNotifications(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Журнал уведомлений получен", http.StatusOK)
}
