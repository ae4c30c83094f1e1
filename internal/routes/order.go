package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/controllers"
	"service-crm/internal/services"
	"service-crm/pkg/constants"
	"service-crm/pkg/middleware"
)

func runOrderRouter(secureGroup *echo.Group, orderService services.OrderServiceInterface, logger *zap.Logger) {
	orderCtrl := controllers.NewOrderController(orderService, logger)
	coordinators := middleware.RequireRoles(constants.RoleCoordinator, constants.RoleAdmin)
	{
		secureGroup.GET("/orders", orderCtrl.GetOrders)
		secureGroup.POST("/orders", orderCtrl.CreateOrder,
			middleware.RequireRoles(constants.RoleOperator, constants.RoleCoordinator, constants.RoleAdmin))
		secureGroup.GET("/orders/:id", orderCtrl.FindOrder)
		secureGroup.GET("/orders/:id/history", orderCtrl.GetHistory)
		secureGroup.GET("/orders/:id/notifications", orderCtrl.GetNotifications, coordinators)

		secureGroup.POST("/orders/:id/assign", orderCtrl.AssignOrder, coordinators)
		// Менеджер меняет статус только своих заявок, это проверяет сервис.
		secureGroup.PUT("/orders/:id/status", orderCtrl.UpdateStatus,
			middleware.RequireRoles(constants.RoleManager, constants.RoleCoordinator, constants.RoleAdmin))
		secureGroup.POST("/orders/:id/blacklist", orderCtrl.AddToBlacklist, coordinators)
	}
}
