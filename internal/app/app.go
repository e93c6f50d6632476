package app

import (
	"context"
	"fitcenter/internal/config"
	"fitcenter/internal/db"
	"fitcenter/internal/handlers"
	"fitcenter/internal/logger"
	"fitcenter/internal/repository"
	"fitcenter/internal/routes"
	"fitcenter/internal/services"
	"fitcenter/internal/sessions"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Журнал сброса живёт в Mongo и является best-effort: без него сервис
	// поднимается, но админский журнал будет недоступен.
	var events repository.ResetEventRepo
	if mongoDB, err := db.NewMongoConnection(cfg); err != nil {
		logger.Log.Warn("MongoDB недоступна, журнал сброса отключён", zap.Error(err))
	} else if repo, err := repository.NewResetEventRepository(context.Background(), mongoDB); err != nil {
		logger.Log.Warn("Не удалось подготовить коллекцию журнала", zap.Error(err))
	} else {
		events = repo
	}

	// Репозитории
	accountRepo := repository.NewAccountRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)

	// Сервисы
	authService := services.NewAuthService(accountRepo)
	emailService := services.NewEmailService(cfg)
	passwordService := services.NewPasswordService(
		resetRepo, accountRepo, events, cfg.FrontendURL, cfg.PasswordResetTTL(),
	)

	sessionStore := sessions.NewStore(10000, cfg.SessionTTL())

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil || accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, sessionStore, cfg.JWTSecret, accessTTL, cfg.SessionTTL(), cfg.Env)
	passwordHandler := handlers.NewPasswordHandler(passwordService, cfg.FrontendURL)
	adminHandler := handlers.NewAdminHandler(authService)

	// Периодическая чистка истёкших токенов
	StartTokenCleaner(passwordService)

	// Воркеры очереди писем
	for i := 0; i < cfg.EmailWorkerCount(); i++ {
		services.StartEmailWorker(emailService)
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, passwordHandler, adminHandler, cfg.JWTSecret, cfg.CronSecret)

	return router, nil
}

func StartTokenCleaner(svc *services.PasswordService) {
	t := time.NewTicker(1 * time.Hour)
	go func() {
		for range t.C {
			if _, err := svc.CleanupExpired(context.Background()); err != nil {
				logger.Log.Error("Плановая очистка токенов не удалась", zap.Error(err))
			}
		}
	}()
}
