package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"service-crm/internal/repositories"
	"service-crm/internal/routes"
	"service-crm/pkg/config"
	"service-crm/pkg/customvalidator"
	apperrors "service-crm/pkg/errors"
	applogger "service-crm/pkg/logger"
	appmiddleware "service-crm/pkg/middleware"
	"service-crm/pkg/service"
	"service-crm/pkg/utils"
)

func main() {
	// 1. Конфиг и логгер
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	logger, err := applogger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Echo и middleware
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition", echo.HeaderXRequestID},
	}))
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(appmiddleware.Metrics())

	// 3. Валидатор
	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	// 4. PostgreSQL и миграции
	dbConn, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Ошибка создания пула соединений к БД", zap.Error(err))
	}
	defer dbConn.Close()
	if err := dbConn.Ping(ctx); err != nil {
		logger.Fatal("Не удалось пинговать БД", zap.Error(err))
	}
	if err := repositories.Migrate(ctx, dbConn); err != nil {
		logger.Fatal("Ошибка применения миграций", zap.Error(err))
	}
	logger.Info("✅ Подключено к PostgreSQL, миграции применены")

	// 5. Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	// 6. Сервисы и роуты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)

	loggers := &routes.Loggers{
		Main:         logger,
		Auth:         logger.Named("auth"),
		Order:        logger.Named("order"),
		Notification: logger.Named("notification"),
	}
	svcs, err := routes.BuildServices(dbConn, redisClient, jwtSvc, cfg, loggers)
	if err != nil {
		logger.Fatal("Ошибка инициализации сервисов", zap.Error(err))
	}
	routes.InitRouter(e, svcs, jwtSvc, loggers)

	// 7. Запуск и корректная остановка
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Остановка сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Уведомления, начатые последними запросами, дописывают журнал до закрытия пула.
		if err := svcs.Order.Drain(shutdownCtx); err != nil {
			logger.Warn("не все уведомления отправлены до остановки", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Ошибка работы сервера", zap.Error(err))
	}
	logger.Info("Сервер остановлен")
}
