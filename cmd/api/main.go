package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizgame-api/internal/config"
	"github.com/yourusername/quizgame-api/internal/handler"
	"github.com/yourusername/quizgame-api/internal/middleware"
	pgRepo "github.com/yourusername/quizgame-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizgame-api/internal/repository/redis"
	"github.com/yourusername/quizgame-api/internal/service"
	"github.com/yourusername/quizgame-api/pkg/auth"
	"github.com/yourusername/quizgame-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	gameRepo := pgRepo.NewGameRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	invalidTokenRepo := pgRepo.NewInvalidTokenRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, invalidTokenRepo)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Отправка писем: Resend при наличии ключа, иначе noop
	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		log.Println("Email: используется Resend")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("Email: ключ не задан, письма не отправляются")
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	gameService := service.NewGameService(gameRepo)
	resultService := service.NewResultService(sessionRepo, emailService)
	sessionService := service.NewSessionService(
		gameRepo, sessionRepo, cacheRepo, resultService,
		cfg.Game.StatusCacheTTL, cfg.Game.SessionStateTTL,
	)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	gameHandler := handler.NewGameHandler(gameService, sessionService)
	sessionHandler := handler.NewSessionHandler(sessionService, resultService)
	playerHandler := handler.NewPlayerHandler(sessionService)

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	streamHandler := handler.NewSessionStreamHandler(sessionService, jwtService, allowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Маршруты администратора
	admin := router.Group("/admin")
	{
		authGroup := admin.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
		}

		games := admin.Group("/games")
		games.Use(authMiddleware.RequireAuth())
		{
			games.GET("", gameHandler.List)
			games.POST("", gameHandler.Create)
			games.PUT("", gameHandler.ReplaceAll)

			gameWithID := games.Group("/:gameid")
			gameWithID.Use(middleware.ExtractUintParam("gameid", "game_id"))
			{
				gameWithID.POST("/mutate", gameHandler.Mutate)
			}
		}

		session := admin.Group("/session/:sessionid")
		session.Use(middleware.ExtractSessionID("sessionid", "session_id"))
		{
			// Поток статуса аутентифицируется токеном в параметре запроса:
			// браузерный WebSocket API не умеет выставлять заголовки
			session.GET("/ws", streamHandler.HandleConnection)

			authed := session.Group("")
			authed.Use(authMiddleware.RequireAuth())
			{
				authed.GET("/status", sessionHandler.Status)
				authed.GET("/results", sessionHandler.Results)
				authed.GET("/results/export", sessionHandler.ExportResults)
			}
		}
	}

	// Маршруты игроков (без аутентификации)
	play := router.Group("/play")
	{
		play.POST("/join/:sessionid",
			middleware.ExtractSessionID("sessionid", "session_id"),
			playerHandler.Join,
		)

		player := play.Group("/:playerid")
		player.Use(middleware.ExtractUintParam("playerid", "player_id"))
		{
			player.GET("/status", playerHandler.Status)
			player.GET("/question", playerHandler.Question)
			player.PUT("/answer", playerHandler.SubmitAnswer)
			player.GET("/answer", playerHandler.CorrectAnswers)
			player.GET("/results", playerHandler.Results)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ждем сигнала остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
