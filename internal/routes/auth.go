package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"service-crm/internal/controllers"
)

func runAuthRouter(api, secureGroup *echo.Group, svcs *Services, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(svcs.Auth, svcs.User, logger)

	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/refresh", authCtrl.Refresh)
	secureGroup.GET("/auth/me", authCtrl.Me)
}
