package routes

import (
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"service-crm/internal/repositories"
	"service-crm/internal/services"
	"service-crm/pkg/config"
	"service-crm/pkg/mailer"
	"service-crm/pkg/middleware"
	"service-crm/pkg/service"
	"service-crm/pkg/telegram"
)

type Loggers struct {
	Main         *zap.Logger
	Auth         *zap.Logger
	Order        *zap.Logger
	Notification *zap.Logger
}

// Services - все сервисы, которые нужны HTTP-слою.
type Services struct {
	Auth      services.AuthServiceInterface
	User      services.UserServiceInterface
	Order     services.OrderServiceInterface
	Managers  services.ManagerStatusServiceInterface
	Blacklist services.BlacklistServiceInterface
	Report    services.ReportServiceInterface
}

// BuildServices собирает репозитории, канал доставки и сервисы.
func BuildServices(
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	cfg *config.Config,
	loggers *Loggers,
) (*Services, error) {
	txManager := repositories.NewTxManager(dbConn, cfg.Postgres.LockTimeout)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn)
	addressRepo := repositories.NewAddressRepository(dbConn)
	statusRepo := repositories.NewManagerStatusRepository(dbConn)
	blacklistRepo := repositories.NewBlacklistRepository(dbConn)
	historyRepo := repositories.NewStatusHistoryRepository(dbConn)
	logRepo := repositories.NewNotificationLogRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. КАНАЛ ДОСТАВКИ ---
	bot := telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.APIURL, cfg.Telegram.RatePerSecond)
	sender := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.FromEmail, cfg.SMTP.FromName)
	channel, err := services.NewDeliveryChannel(cfg.Notification.Channel, bot, sender, loggers.Notification)
	if err != nil {
		return nil, fmt.Errorf("канал уведомлений: %w", err)
	}
	loggers.Main.Info("канал уведомлений выбран", zap.String("channel", channel.Name()))

	// --- 3. СЕРВИСЫ ---
	notifier := services.NewNotificationService(channel, logRepo, cfg.Notification.DeliveryTimeout, loggers.Notification)
	history := services.NewStatusHistoryService(historyRepo, loggers.Order)
	managers := services.NewManagerStatusService(txManager, statusRepo, orderRepo, userRepo, loggers.Order)
	blacklist := services.NewBlacklistService(blacklistRepo, loggers.Order)

	return &Services{
		Auth:  services.NewAuthService(userRepo, cacheRepo, jwtSvc, cfg.Auth, loggers.Auth),
		User:  services.NewUserService(txManager, userRepo, statusRepo, loggers.Main),
		Order: services.NewOrderService(txManager, orderRepo, addressRepo, userRepo,
			history, managers, blacklist, notifier, cfg.Notification, loggers.Order),
		Managers:  managers,
		Blacklist: blacklist,
		Report:    services.NewReportService(reportRepo, loggers.Main),
	}, nil
}

func InitRouter(e *echo.Echo, svcs *Services, jwtSvc service.JWTService, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, svcs, loggers.Auth)
	runUserRouter(secureGroup, svcs.User, loggers.Main)
	runOrderRouter(secureGroup, svcs.Order, loggers.Order)
	runBlacklistRouter(secureGroup, svcs.Order, svcs.Blacklist, loggers.Order)
	runManagerRouter(secureGroup, svcs.Managers, loggers.Order)
	runReportRouter(secureGroup, svcs.Report, loggers.Main)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
