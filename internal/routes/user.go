package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/controllers"
	"service-crm/internal/services"
	"service-crm/pkg/constants"
	"service-crm/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userService services.UserServiceInterface, logger *zap.Logger) {
	userCtrl := controllers.NewUserController(userService, logger)
	staff := middleware.RequireRoles(constants.RoleCoordinator, constants.RoleAdmin)

	secureGroup.POST("/users", userCtrl.CreateUser, middleware.RequireRoles(constants.RoleAdmin))
	secureGroup.GET("/users", userCtrl.GetUsers, staff)
	secureGroup.GET("/users/:id", userCtrl.FindUser, staff)
}
