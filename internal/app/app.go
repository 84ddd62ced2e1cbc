package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/config"
	"github.com/RubachokBoss/thesisflow/internal/database"
	"github.com/RubachokBoss/thesisflow/internal/delivery/httpd"
	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/RubachokBoss/thesisflow/internal/repository/memory"
	"github.com/RubachokBoss/thesisflow/internal/service"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/RubachokBoss/thesisflow/internal/worker"
	"github.com/RubachokBoss/thesisflow/internal/worker/queue"
	"github.com/RubachokBoss/thesisflow/pkg/hash"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config

	db             *sql.DB
	store          repository.Store
	auth           service.AuthService
	pool           *worker.WorkerPool
	rabbitmqClient integration.RabbitMQClient
	cacheClient    integration.CacheClient
	notifications  worker.NotificationWorker
	stopWorker     context.CancelFunc
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{logger: log, config: cfg}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	storage, err := a.openStorage()
	if err != nil {
		a.closeDB()
		return nil, err
	}

	hasher, err := hash.NewHasher(hash.Algorithm(cfg.Storage.HashAlgorithm))
	if err != nil {
		a.closeDB()
		return nil, err
	}

	if cfg.Redis.Enabled {
		rdb := integration.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.cacheClient = integration.NewCacheClient(rdb, cfg.Redis.CacheTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache enabled")
	}

	notifier := a.buildNotifier()

	identity := integration.NewIdentityProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	aiClient := integration.NewAIClient(
		cfg.AI.URL,
		cfg.AI.APIKey,
		cfg.AI.Model,
		cfg.AI.Timeout,
		cfg.AI.RetryCount,
		cfg.AI.RetryDelay,
		log,
	)

	sequencer := service.NewSequencer(log)
	a.auth = service.NewAuthService(store, identity, cfg.Auth.BcryptCost, log)

	handler := httpd.NewHandler(httpd.Services{
		Auth:          a.auth,
		Users:         service.NewUserService(store, log),
		Dissertations: service.NewDissertationService(store, storage, sequencer, log),
		Milestones:    service.NewMilestoneService(store, notifier, log),
		Submissions:   service.NewSubmissionService(store, storage, sequencer, hasher, notifier, log),
		Reviews:       service.NewReviewService(store, notifier, log),
		Messages:      service.NewMessageService(store, log),
		AI:            service.NewAIService(aiClient, a.cacheClient, hasher, log),
	}, store, cfg.Server.MaxUploadSize, log)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Metrics)
	router.Use(middleware.RequestSize(cfg.Server.MaxUploadSize + 1<<20))
	router.Use(httpd.Recovery(log))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func (a *App) openStore() (repository.Store, error) {
	if a.config.Database.Driver == "memory" {
		a.logger.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := database.NewPostgres(a.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.logger.Info().Str("host", a.config.Database.Host).Msg("Database connection established")
	return repository.NewPostgresStore(db, a.logger), nil
}

func (a *App) openStorage() (repository.FileStorage, error) {
	cfg := a.config.Storage
	if cfg.Driver == "memory" {
		a.logger.Warn().Msg("Using in-memory file storage")
		return memory.NewFileStorage(), nil
	}

	storage, err := repository.NewMinIOStorage(
		cfg.Endpoint,
		cfg.AccessKey,
		cfg.SecretKey,
		cfg.Bucket,
		cfg.Region,
		cfg.UseSSL,
		cfg.ConnectTimeout,
		a.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}
	return storage, nil
}

// buildNotifier prefers the RabbitMQ pipeline and falls back to sending on
// the local worker pool when the broker is disabled or unreachable.
func (a *App) buildNotifier() service.Notifier {
	cfg := a.config
	log := a.logger

	var email integration.EmailClient
	if cfg.Email.Enabled {
		email = integration.NewEmailClient(cfg.Email.APIKey, cfg.Email.Host, cfg.Email.FromName, cfg.Email.FromEmail, log)
	} else {
		log.Info().Msg("E-mail delivery disabled, notifications are logged only")
		email = integration.NewLogEmailClient(log)
	}

	a.pool = worker.NewWorkerPool(cfg.Notifications.MaxWorkers, log)
	a.pool.Start()

	sender := worker.NewSender(email, a.cacheClient, log)
	direct := worker.NewDirectNotifier(a.pool, sender, log)

	if !cfg.RabbitMQ.Enabled {
		return direct
	}

	client, err := integration.NewRabbitMQClient(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client, sending notifications directly")
		return direct
	}
	a.rabbitmqClient = client

	consumer := queue.NewRabbitMQConsumer(
		client.Channel(),
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		cfg.Notifications.MaxWorkers,
		log,
	)
	a.notifications = worker.NewNotificationWorker(a.pool, consumer, sender, log)

	return worker.NewQueueNotifier(client, direct, log)
}

// Auth exposes the auth service for operator commands such as create-admin.
func (a *App) Auth() service.AuthService {
	return a.auth
}

func (a *App) Run() error {
	if a.notifications != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopWorker = cancel
		if err := a.notifications.Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start notification worker")
		}
	}

	a.logger.Info().Msgf("Starting ThesisFlow on %s", a.config.Server.Address)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down ThesisFlow...")

	err := a.server.Shutdown(ctx)

	if a.notifications != nil {
		a.notifications.Stop()
	}
	if a.stopWorker != nil {
		a.stopWorker()
	}
	a.pool.Stop()

	if a.rabbitmqClient != nil {
		if err := a.rabbitmqClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.cacheClient != nil {
		if err := a.cacheClient.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}

	a.closeDB()

	return err
}

func (a *App) closeDB() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}
}

// CreateAdmin provisions an administrator account; public registration
// cannot. The application is shut down whether or not it succeeds.
func CreateAdmin(ctx context.Context, cfg *config.Config, log zerolog.Logger, email, password, name string) (*models.User, error) {
	// Notifications are irrelevant here.
	cfg.RabbitMQ.Enabled = false

	application, err := New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := application.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown after creating administrator")
		}
	}()

	user, err := application.Auth().CreateAdmin(ctx, email, password, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create administrator: %w", err)
	}
	return user, nil
}
