package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/controllers"
	"service-crm/internal/services"
	"service-crm/pkg/constants"
	"service-crm/pkg/middleware"
)

func runBlacklistRouter(
	secureGroup *echo.Group,
	orderService services.OrderServiceInterface,
	blacklistService services.BlacklistServiceInterface,
	logger *zap.Logger,
) {
	ctrl := controllers.NewBlacklistController(orderService, blacklistService, logger)
	readers := middleware.RequireRoles(constants.RoleOperator, constants.RoleCoordinator, constants.RoleAdmin)
	writers := middleware.RequireRoles(constants.RoleCoordinator, constants.RoleAdmin)

	secureGroup.GET("/blacklist", ctrl.GetEntries, readers)
	secureGroup.GET("/blacklist/lookup", ctrl.Lookup, readers)
	secureGroup.GET("/blacklist/:id", ctrl.FindEntry, readers)
	secureGroup.POST("/blacklist", ctrl.BlacklistClient, writers)
	secureGroup.DELETE("/blacklist/:id", ctrl.RemoveEntry, writers)
}
