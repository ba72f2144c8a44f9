package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/infra/database"
	"github.com/edumax/leads-service/internal/infra/events"
	"github.com/edumax/leads-service/internal/infra/http/handlers"
	"github.com/edumax/leads-service/internal/infra/http/middleware"
	"github.com/edumax/leads-service/internal/infra/integration/scoring"
	"github.com/edumax/leads-service/internal/infra/mail"
	"github.com/edumax/leads-service/internal/infra/queue"
	"github.com/edumax/leads-service/internal/infra/worker"
	"github.com/edumax/leads-service/internal/usecase"
)

func main() {
	godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event fan-out. Without RABBITMQ_URL the bus alone carries events
	// (single-node mode); with it, events round-trip through the exchange so
	// every instance sees the full stream.
	bus := events.NewBus()
	defer bus.Close()

	var amqpPublisher usecase.EventPublisher
	var rabbit *queue.RabbitMQ
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		rabbit, err = queue.NewRabbitMQ(url)
		if err != nil {
			logger.WithError(err).Fatal("RabbitMQ connection failed")
		}
		defer rabbit.Close()

		amqpPublisher = queue.NewProducer(rabbit.Ch)

		eventWorker := queue.NewWorker(rabbit.Ch, bus, logger)
		if err := eventWorker.Start(ctx); err != nil {
			logger.WithError(err).Fatal("notification event consumer failed")
		}
	}

	var cache *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = redis.NewClient(&redis.Options{Addr: addr})
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable, stats caching disabled")
			cache = nil
		}
	}

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	txManager := database.NewTxManager(db)

	// Scoring oracle
	scoringClient := scoring.NewClient(
		os.Getenv("SCORING_URL"),
		time.Duration(envInt("SCORING_TIMEOUT_SECONDS", 10))*time.Second,
	)

	// Dispatcher + pipeline
	dispatcher := usecase.NewNotificationDispatcher(notificationRepo, bus, amqpPublisher, logger)

	createLeadUC := usecase.NewCreateLeadUseCase(
		leadRepo, interactionRepo, dispatcher, scoringClient, txManager,
		envInt("QUALIFICATION_THRESHOLD", usecase.DefaultQualificationThreshold),
		logger,
	)
	rescoreLeadUC := usecase.NewRescoreLeadUseCase(leadRepo, dispatcher, scoringClient, txManager, logger)

	// Urgent notifications also go out by email when configured.
	if alertAddr := os.Getenv("ALERT_EMAIL"); alertAddr != "" {
		sender := mail.NewEmailSender(
			os.Getenv("MAIL_HOST"),
			envInt("MAIL_PORT", 587),
			os.Getenv("MAIL_USER"),
			os.Getenv("MAIL_PASS"),
			os.Getenv("MAIL_FROM"),
		)
		mail.NewAlertNotifier(sender, alertAddr, logger).Start(ctx, bus)
	}

	retentionDays := envInt("NOTIFICATION_RETENTION_DAYS", 30)
	go worker.NewRetentionWorker(dispatcher, retentionDays, logger).Start(ctx)

	// Handlers
	leadHandler := handlers.NewLeadHandler(createLeadUC, rescoreLeadUC, leadRepo, interactionRepo, cache, logger)
	notificationHandler := handlers.NewNotificationHandler(dispatcher, retentionDays, logger)

	var rabbitConn *amqp091.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	healthHandler := handlers.NewHealthHandler(db, rabbitConn)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", leadHandler.HandleCreate)
		r.Get("/", leadHandler.HandleList)
		r.Get("/stats/summary", leadHandler.HandleStats)
		r.Get("/export/csv", leadHandler.HandleExportCSV)
		r.Get("/{id}", leadHandler.HandleGet)
		r.Put("/{id}/status", leadHandler.HandleUpdateStatus)
		r.Post("/{id}/score", leadHandler.HandleRescore)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", notificationHandler.HandleList)
		r.Get("/stats", notificationHandler.HandleStats)
		r.Put("/read", notificationHandler.HandleMarkManyRead)
		r.Put("/{id}/read", notificationHandler.HandleMarkRead)
		r.Delete("/cleanup", notificationHandler.HandleCleanup)
		r.Delete("/{id}", notificationHandler.HandleDelete)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.WithField("port", port).Info("leads service running")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return fallback
}
