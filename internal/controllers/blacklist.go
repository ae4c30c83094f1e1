package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/entities"
	"service-crm/internal/services"
	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/types"
	"service-crm/pkg/utils"
)

type BlacklistController struct {
	orderService     services.OrderServiceInterface
	blacklistService services.BlacklistServiceInterface
	logger           *zap.Logger
}

func NewBlacklistController(
	orderService services.OrderServiceInterface,
	blacklistService services.BlacklistServiceInterface,
	logger *zap.Logger,
) *BlacklistController {
	return &BlacklistController{
		orderService:     orderService,
		blacklistService: blacklistService,
		logger:           logger,
	}
}

func blacklistEntryToDTO(e *entities.BlacklistEntry) dto.BlacklistEntryResponseDTO {
	related := make([]string, 0, len(e.RelatedOrders))
	for _, id := range e.RelatedOrders {
		related = append(related, id.String())
	}
	return dto.BlacklistEntryResponseDTO{
		ID:            e.ID,
		ClientName:    e.ClientName,
		Phone:         e.Phone,
		Reason:        e.Reason,
		RelatedOrders: related,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
}

func (c *BlacklistController) GetEntries(ctx echo.Context) error {
	filter := utils.ParseFilter(ctx.Request().URL.Query())
	entries, total, err := c.blacklistService.GetEntries(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	list := make([]dto.BlacklistEntryResponseDTO, 0, len(entries))
	for i := range entries {
		list = append(list, blacklistEntryToDTO(&entries[i]))
	}
	return utils.PaginatedResponse(ctx, list, types.NewPagination(total, filter.Page, filter.Limit), "Черный список получен")
}

func (c *BlacklistController) FindEntry(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	entry, err := c.blacklistService.FindEntry(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, blacklistEntryToDTO(entry), "Запись получена", http.StatusOK)
}

// Lookup: ?client_name=...&phone=... Отсутствие записи - не ошибка, body = null.
func (c *BlacklistController) Lookup(ctx echo.Context) error {
	name, phone := ctx.QueryParam("client_name"), ctx.QueryParam("phone")
	if name == "" || phone == "" {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("client_name и phone обязательны"))
	}
	entry, err := c.blacklistService.LookupIdentity(ctx.Request().Context(), name, phone)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if entry == nil {
		return utils.SuccessResponse(ctx, nil, "Клиент не найден в черном списке", http.StatusOK)
	}
	return utils.SuccessResponse(ctx, blacklistEntryToDTO(entry), "Клиент в черном списке", http.StatusOK)
}

func (c *BlacklistController) BlacklistClient(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.BlacklistClientDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	entry, err := c.orderService.BlacklistClient(reqCtx, payload.ClientName, payload.Phone, payload.Reason, claims.UserID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, blacklistEntryToDTO(entry), "Клиент добавлен в черный список", http.StatusOK)
}

func (c *BlacklistController) RemoveEntry(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	claims, err := utils.GetClaimsFromContext(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := c.orderService.RemoveFromBlacklist(reqCtx, id, claims.UserID); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Клиент удален из черного списка", http.StatusOK)
}
