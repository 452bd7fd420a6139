package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourusername/hottakes-api/internal/config"
	"github.com/yourusername/hottakes-api/internal/handler"
	"github.com/yourusername/hottakes-api/internal/middleware"
	pgRepo "github.com/yourusername/hottakes-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/hottakes-api/internal/repository/redis"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/internal/service/reminder"
	"github.com/yourusername/hottakes-api/pkg/auth"
	"github.com/yourusername/hottakes-api/pkg/database"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		// логгера еще нет
		os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, ServiceName: "hottakes-api"})
	defer log.Sync()
	log.Info("Конфигурация загружена", "path", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Database.LogLevel)
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных", "error", err)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath, log.Named("migrate")); err != nil {
		log.Fatal("Не удалось применить миграции", "error", err)
	}

	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Не удалось подключиться к Redis", "error", err)
	}
	defer redisClient.Close()
	log.Info("Подключение к Redis установлено", "mode", cfg.Redis.Mode)

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	gameDayRepo := pgRepo.NewGameDayRepo(db)
	hottakeRepo := pgRepo.NewHottakeRepo(db)
	submissionRepo := pgRepo.NewSubmissionRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient, cfg.Redis.KeyPrefix)
	if err != nil {
		log.Fatal("Не удалось создать CacheRepo", "error", err)
	}

	var emailService service.EmailService
	switch cfg.Email.Provider {
	case "resend":
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, log)
		if err != nil {
			log.Fatal("Не удалось инициализировать отправку писем", "error", err)
		}
	default:
		emailService = service.NewNoopEmailService(log)
	}

	// Инициализируем сервисы
	lbCache := service.NewLeaderboardCache(cacheRepo, time.Duration(cfg.Game.LeaderboardCacheTTL)*time.Second, log)
	gameDayService := service.NewGameDayService(gameDayRepo, submissionRepo, lbCache, log)
	submissionService := service.NewSubmissionService(submissionRepo, hottakeRepo, userRepo, gameDayService, lbCache, cfg.Game.HottakesPerDay, log)
	hottakeService := service.NewHottakeService(hottakeRepo, gameDayService, submissionService, log)
	leaderboardService := service.NewLeaderboardService(submissionRepo, hottakeRepo, lbCache, log)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Fatal("Не удалось инициализировать JWT", "error", err)
	}
	cookies := auth.NewCookieManager(cfg.JWT.CookieName, cfg.JWT.CookieSecure)

	authService, err := service.NewAuthService(userRepo, cacheRepo, jwtService, emailService, cfg.Server.PublicURL, log)
	if err != nil {
		log.Fatal("Не удалось инициализировать AuthService", "error", err)
	}

	if cfg.Admin.Secret == "" && cfg.Admin.Nickname == "" {
		log.Warn("Администратор не настроен: ADMIN_SECRET и ADMIN_NICKNAME пусты")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService, cookies, middleware.AdminConfig{
		Secret:   cfg.Admin.Secret,
		Nickname: cfg.Admin.Nickname,
		Header:   cfg.Admin.Header,
	}, log)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authService, cookies, log),
		Hottakes:    handler.NewHottakeHandler(hottakeService, log),
		Submissions: handler.NewSubmissionHandler(submissionService, log),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService, gameDayService, log),
		GameDays:    handler.NewGameDayHandler(gameDayService, cfg.Game.HottakesPerDay, log),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": handler.PingerFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"cache": cacheRepo,
		}, log),
		AuthMiddleware: authMiddleware,
		RateLimiter:    middleware.NewRateLimiter(cacheRepo, log),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AdminHeader:    cfg.Admin.Header,
		TrustedProxies: cfg.Server.TrustedProxies,
		Log:            log,
	})

	// Ежедневные напоминания
	var scheduler *reminder.Scheduler
	if cfg.Reminder.Enabled {
		location, err := cfg.Reminder.Location()
		if err != nil {
			log.Fatal("Неизвестный часовой пояс напоминаний", "timezone", cfg.Reminder.Timezone, "error", err)
		}
		reminderService := service.NewReminderService(userRepo, submissionRepo, cacheRepo, gameDayService, emailService, cfg.Server.PublicURL, location, log)
		scheduler = reminder.NewScheduler(reminder.Config{
			Hour:     cfg.Reminder.Hour,
			Minute:   cfg.Reminder.Minute,
			Location: location,
		}, func(ctx context.Context) error {
			_, err := reminderService.SendDailyReminders(ctx)
			return err
		}, log)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatal("Не удалось запустить планировщик напоминаний", "error", err)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("Запуск HTTP сервера", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP сервер остановился с ошибкой", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Получен сигнал остановки", "signal", sig.String())
	case <-ctx.Done():
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Сервер остановлен принудительно", "error", err)
	}

	log.Info("Сервер остановлен")
}
