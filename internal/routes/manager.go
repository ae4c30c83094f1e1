package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/controllers"
	"service-crm/internal/services"
)

// Права на смену статуса проверяет сервис: менеджер - только свой, координатор - любой.
func runManagerRouter(secureGroup *echo.Group, managerService services.ManagerStatusServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewManagerStatusController(managerService, logger)

	secureGroup.GET("/managers", ctrl.List)
	secureGroup.GET("/managers/:id/status", ctrl.GetStatus)
	secureGroup.PUT("/managers/:id/status", ctrl.SetStatus)
}
