package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/deskline/service-desk/internal/api/http"
	"github.com/deskline/service-desk/internal/api/http/handlers"
	"github.com/deskline/service-desk/internal/auth"
	"github.com/deskline/service-desk/internal/config"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/observability"
	"github.com/deskline/service-desk/internal/persistence"
	"github.com/deskline/service-desk/internal/repository"
	"github.com/deskline/service-desk/internal/repository/memory"
	"github.com/deskline/service-desk/internal/service"
	"github.com/deskline/service-desk/internal/stream"
	"github.com/deskline/service-desk/internal/worker"
)

type repositories struct {
	users      repository.UserRepository
	teams      repository.TeamRepository
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	comments   repository.TicketCommentRepository
	assets     repository.AssetRepository
	assetTypes repository.AssetTypeRepository
	articles   repository.KnowledgeRepository
	org        repository.OrganizationRepository
	sequence   repository.TicketSequence
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg, redis, cfg.Redis, logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	hub := stream.NewHub(logger.Named("stream"), cfg.Notification.StreamBufferSize)

	authService := service.NewAuthService(cfg.Auth, repos.users, logger)
	if err := authService.BootstrapAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPass); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repos.tickets,
		HistoryRepo: repos.history,
		CommentRepo: repos.comments,
		UserRepo:    repos.users,
		TeamRepo:    repos.teams,
		Sequence:    repos.sequence,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	userService := service.NewUserService(repos.users, repos.teams, hub)
	teamService := service.NewTeamService(repos.teams, repos.users)
	workflowService := service.NewWorkflowService(logger.Named("workflow"))
	assetService := service.NewAssetService(repos.assets, repos.assetTypes, repos.users, repos.teams)
	knowledgeService := service.NewKnowledgeService(repos.articles, logger.Named("knowledge"))
	orgService := service.NewOrganizationService(repos.org)
	notificationService := service.NewNotificationService(dispatcher, hub, logger, cfg.Notification)

	worker.StartNotificationWorker(ctx, notificationService, hub)

	dependencies := map[string]handlers.Pinger{"redis": redis}
	if pg.Enabled() {
		dependencies["postgres"] = pg
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService, userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Teams:          handlers.NewTeamsHandler(teamService),
		Workflows:      handlers.NewWorkflowsHandler(workflowService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Knowledge:      handlers.NewKnowledgeHandler(knowledgeService),
		Organization:   handlers.NewOrganizationHandler(orgService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Stream:         handlers.NewStreamHandler(ctx, hub),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.users),
		Counters:       metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// buildRepositories prefers Postgres and falls back to in-memory stores without a DSN.
// Without a database, ticket numbers come from Redis when reachable at startup.
func buildRepositories(pg *persistence.Postgres, redis *persistence.Redis, redisCfg config.RedisConfig, logger *zap.Logger) repositories {
	var repos repositories
	var pool *pgxpool.Pool
	if pg.Enabled() {
		pool = pg.PoolHandle()
		repos = repositories{
			users:      repository.NewUserRepository(pool),
			teams:      repository.NewTeamRepository(pool),
			tickets:    repository.NewTicketRepository(pool),
			history:    repository.NewTicketHistoryRepository(pool),
			comments:   repository.NewTicketCommentRepository(pool),
			assets:     repository.NewAssetRepository(pool),
			assetTypes: repository.NewAssetTypeRepository(pool),
			articles:   repository.NewKnowledgeRepository(pool),
			org:        repository.NewOrganizationRepository(pool),
		}
	} else {
		logger.Warn("using in-memory repositories; data is lost on restart")
		repos = repositories{
			users:      memory.NewUsers(),
			teams:      memory.NewTeams(),
			tickets:    memory.NewTickets(),
			history:    memory.NewHistory(),
			comments:   memory.NewComments(),
			assets:     memory.NewAssets(),
			assetTypes: memory.NewAssetTypes(),
			articles:   memory.NewArticles(),
			org:        memory.NewOrganization(),
		}
	}
	var client *goredis.Client
	if redis.Available {
		client = redis.Client
	}
	repos.sequence = repository.SelectTicketSequence(pool, client, redisCfg.TicketSequenceKey)
	if repos.sequence == nil {
		repos.sequence = memory.NewSequence()
	}
	return repos
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
