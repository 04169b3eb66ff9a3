package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altcad-web/internal/authclient"
	"altcad-web/internal/config"
	"altcad-web/internal/handler"
	"altcad-web/internal/messaging"
	"altcad-web/internal/middleware"
	"altcad-web/internal/observability"
	"altcad-web/internal/repository/postgres"
	"altcad-web/internal/security"
	"altcad-web/internal/service"
	"altcad-web/internal/session"
	"altcad-web/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting web server")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	rmqCtx, rmqCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer rmqCancel()

	rmq, err := messaging.NewRabbitMQWithRetry(rmqCtx, cfg.RabbitMQURL)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rmq.Close()

	conversationRepo := postgres.NewConversationRepository(db)
	messageRepo, err := postgres.NewMessageRepository(db)
	if err != nil {
		slog.Error("failed to prepare message repository", slog.String("error", err.Error()))
		os.Exit(1)
	}
	notificationRepo := postgres.NewNotificationRepository(db)

	messageService := service.NewMessageService(conversationRepo, messageRepo, rmq)
	notificationService := service.NewNotificationService(notificationRepo)

	authAPI := authclient.New(cfg.AuthAPIURL)
	codec := session.NewCodec(cfg.SessionSecret)
	store := session.NewCookieStore(codec, cfg.IsProduction())
	sessions := session.NewManager(authAPI, store)
	tokens := security.NewTokenManager(cfg.SessionSecret)

	hub := websocket.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := hub.Run(ctx); err != nil && err != context.Canceled {
			slog.Error("hub error", slog.String("error", err.Error()))
		}
	}()
	slog.Info("inbox hub started")

	consumer := messaging.NewNotificationConsumer(rmq, hub, notificationService)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("failed to start notification consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("notification consumer started")

	renderer, err := handler.NewRenderer(cfg.TemplateDir)
	if err != nil {
		slog.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authHandler := handler.NewAuthHandler(renderer, sessions)
	pageHandler := handler.NewPageHandler(renderer, tokens, authAPI, messageService, notificationService)
	messageHandler := handler.NewMessageHandler(messageService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	wsHandler := handler.NewWebSocketHandler(ctx, hub, messageService, middleware.ParseOrigins(cfg.AllowedOrigins))

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, rmq))
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.NewRateLimiter(ctx, 5, 10)
	apiLimiter := middleware.NewRateLimiter(ctx, 20, 50)

	// Pages. The route guard checks cookie presence before the session is
	// resolved, so unauthenticated visitors bounce to /login without a
	// decode attempt and authenticated ones never see the auth forms.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGuard())
		r.Use(middleware.Session(store))

		r.Get("/login", authHandler.LoginPage)
		r.Get("/signup", authHandler.SignupPage)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/login", authHandler.Login)
			r.Post("/signup", authHandler.Signup)
		})

		r.Get("/", pageHandler.Home)
		r.Get("/profile", pageHandler.Profile)
		r.Get("/profile/{id}", pageHandler.Profile)
		r.Get("/messages", pageHandler.Messages)
		r.Get("/notifications", pageHandler.Notifications)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRF(tokens))
			r.Post("/logout", authHandler.Logout)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(store))
		r.Use(middleware.RequireSession())
		r.Use(middleware.CSRF(tokens))
		r.Use(apiLimiter.Middleware())
		r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

		r.Get("/conversations", messageHandler.ListConversations)
		r.Post("/conversations", messageHandler.StartConversation)
		r.Get("/conversations/{id}/messages", messageHandler.History)
		r.Post("/conversations/{id}/messages", messageHandler.Send)
		r.Get("/notifications", notificationHandler.List)
		r.Post("/notifications/read", notificationHandler.MarkAllRead)
	})

	// Origin checked during the upgrade handshake
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(store))
		r.Get("/ws/inbox", wsHandler.HandleInbox)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("web server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()

	time.Sleep(100 * time.Millisecond)

	slog.Info("server stopped gracefully")
}
