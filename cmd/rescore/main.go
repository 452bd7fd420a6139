// Команда rescore пересчитывает сохраненные счета сабмитов по текущим статусам хоттейков.
//
//	go run ./cmd/rescore              # все дни
//	go run ./cmd/rescore -day 3       # только день 3
//	go run ./cmd/rescore -force-migration 1
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/yourusername/hottakes-api/internal/config"
	pgRepo "github.com/yourusername/hottakes-api/internal/repository/postgres"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/pkg/database"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

func main() {
	day := flag.Int("day", 0, "игровой день для пересчета, 0 - все дни")
	forceMigration := flag.Int("force-migration", -1, "выставить версию миграций и выйти (снимает dirty)")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "путь к config.yaml")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
	}
	if *configPath == "" {
		*configPath = "config/config.yaml"
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", ServiceName: "hottakes-rescore"})
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Database.LogLevel)
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных", "error", err)
	}

	if *forceMigration >= 0 {
		if err := database.ForceMigrationVersion(db, cfg.Database.MigrationsPath, *forceMigration, log); err != nil {
			log.Fatal("Не удалось выставить версию миграций", "error", err)
		}
		return
	}

	// Пересчет пишет только в submissions, кеш лидерборда истечет по TTL
	lbCache := service.NewLeaderboardCache(nil, 0, log)
	submissionRepo := pgRepo.NewSubmissionRepo(db)
	gameDays := service.NewGameDayService(pgRepo.NewGameDayRepo(db), submissionRepo, lbCache, log)
	submissions := service.NewSubmissionService(
		submissionRepo, pgRepo.NewHottakeRepo(db), pgRepo.NewUserRepo(db),
		gameDays, lbCache, cfg.Game.HottakesPerDay, log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var corrected int
	if *day > 0 {
		corrected, err = submissions.RescoreGameDay(ctx, *day)
	} else {
		corrected, err = submissions.RescoreAll(ctx)
	}
	if err != nil {
		log.Fatal("Пересчет счетов не удался", "day", *day, "error", err)
	}
	log.Info("Пересчет завершен", "day", *day, "corrected", corrected)
}
