package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-crm/internal/repositories"
	"service-crm/pkg/config"
	"service-crm/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runAdmin := flag.Bool("admin", false, "Создать администратора (ADMIN_USERNAME / ADMIN_PASSWORD)")
	runDemo := flag.Bool("demo", false, "Создать демо-операторов, координатора и менеджеров")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -admin -demo)")

	flag.Parse()

	if !*runAdmin && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -admin")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("❌ Ошибка создания пула соединений к БД: %v", err)
	}
	defer dbPool.Close()

	if err := repositories.Migrate(ctx, dbPool); err != nil {
		log.Fatalf("❌ Ошибка применения миграций: %v", err)
	}
	log.Println("======================================================")

	if *runAll || *runAdmin {
		seeders.SeedAdmin(dbPool, cfg, envOr("ADMIN_USERNAME", "admin"), envOr("ADMIN_PASSWORD", "admin12345"))
		log.Println("======================================================")
	}

	if *runAll || *runDemo {
		seeders.SeedDemoStaff(dbPool, cfg)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
