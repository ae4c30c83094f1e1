package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/controllers"
	"service-crm/internal/services"
	"service-crm/pkg/constants"
	"service-crm/pkg/middleware"
)

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, logger *zap.Logger) {
	reportController := controllers.NewReportController(reportService, logger)

	secureGroup.GET("/report", reportController.GetReport,
		middleware.RequireRoles(constants.RoleCoordinator, constants.RoleAdmin))
}
