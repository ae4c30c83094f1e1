package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"service-crm/internal/dto"
	"service-crm/internal/repositories"
	"service-crm/internal/services"
	"service-crm/pkg/config"
	"service-crm/pkg/constants"
	apperrors "service-crm/pkg/errors"
)

type seedUser struct {
	Fio      string
	Username string
	Password string
	Role     string
}

var demoStaff = []seedUser{
	{Fio: "Оператор Демо", Username: "operator", Password: "operator123", Role: constants.RoleOperator},
	{Fio: "Координатор Демо", Username: "coordinator", Password: "coordinator123", Role: constants.RoleCoordinator},
	{Fio: "Иванов Иван", Username: "manager1", Password: "manager123", Role: constants.RoleManager},
	{Fio: "Петров Петр", Username: "manager2", Password: "manager123", Role: constants.RoleManager},
}

func newUserService(db *pgxpool.Pool, cfg *config.Config) services.UserServiceInterface {
	txManager := repositories.NewTxManager(db, cfg.Postgres.LockTimeout)
	return services.NewUserService(
		txManager,
		repositories.NewUserRepository(db),
		repositories.NewManagerStatusRepository(db),
		zap.NewNop(),
	)
}

// seedUsers пропускает уже существующих пользователей.
func seedUsers(ctx context.Context, userService services.UserServiceInterface, users []seedUser) error {
	for _, u := range users {
		_, err := userService.CreateUser(ctx, dto.CreateUserDTO{
			Fio:      u.Fio,
			Username: u.Username,
			Password: u.Password,
			Role:     u.Role,
		})
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			log.Printf("    - Пользователь '%s' уже существует. Пропускаем.", u.Username)
			continue
		}
		if err != nil {
			return fmt.Errorf("пользователь %s: %w", u.Username, err)
		}
		log.Printf("    - Создан пользователь '%s' (%s)", u.Username, u.Role)
	}
	return nil
}

// SeedAdmin создает администратора из конфигурации сидера.
func SeedAdmin(db *pgxpool.Pool, cfg *config.Config, username, password string) {
	ctx := context.Background()
	log.Println("▶️  Создание администратора...")

	admin := seedUser{Fio: "Администратор", Username: username, Password: password, Role: constants.RoleAdmin}
	if err := seedUsers(ctx, newUserService(db, cfg), []seedUser{admin}); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	log.Println("✅ Администратор готов!")
}

// SeedDemoStaff наполняет БД операторами, координаторами и менеджерами для локальной разработки.
func SeedDemoStaff(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()
	log.Println("▶️  Создание демо-сотрудников...")

	if err := seedUsers(ctx, newUserService(db, cfg), demoStaff); err != nil {
		log.Fatalf("❌ Ошибка создания демо-сотрудников: %v", err)
	}
	log.Println("✅ Демо-сотрудники созданы!")
}
