package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dagbjork/verimod/internal/application/access"
	"github.com/dagbjork/verimod/internal/application/auth"
	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/application/project"
	"github.com/dagbjork/verimod/internal/application/query"
	"github.com/dagbjork/verimod/internal/application/retention"
	"github.com/dagbjork/verimod/internal/application/user"
	"github.com/dagbjork/verimod/internal/config"
	infraauth "github.com/dagbjork/verimod/internal/infrastructure/auth"
	"github.com/dagbjork/verimod/internal/infrastructure/engine"
	httprouter "github.com/dagbjork/verimod/internal/infrastructure/http"
	"github.com/dagbjork/verimod/internal/infrastructure/http/handlers"
	"github.com/dagbjork/verimod/internal/infrastructure/http/middleware"
	"github.com/dagbjork/verimod/internal/infrastructure/persistence/postgres"
	"github.com/dagbjork/verimod/internal/infrastructure/queue"
	"github.com/dagbjork/verimod/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	accessRepo := postgres.NewAccessRepository(pool)
	queryRepo := postgres.NewQueryRepository(pool)
	lockRepo := postgres.NewEditLockRepository(pool)

	codec, err := infraauth.NewCodec(infraauth.CodecConfig{
		AccessSecret:  cfg.Token.AccessSecret,
		RefreshSecret: cfg.Token.RefreshSecret,
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create token codec")
	}
	hasher := security.NewHasher(security.Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
	})
	engineClient := engine.NewClient(cfg.Engine.URL)
	sweeper := retention.NewSweeper(sessionRepo, cfg.Token.RefreshTTL, log)

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		asynqOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, sweeper, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		taskEnqueuer = queue.NewNoopEnqueuer()
	}

	// Kick the purge once a day; the worker does the deleting.
	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				if err := taskEnqueuer.EnqueueSessionPurge(purgeCtx); err != nil {
					log.Warn().Err(err).Msg("schedule session purge")
				}
			}
		}
	}()

	authorizer := access.NewAuthorizer(accessRepo)

	loginUC := auth.NewLogin(userRepo, sessionRepo, hasher, codec)
	refreshUC := auth.NewRefresh(sessionRepo, codec)
	logoutUC := auth.NewLogout(sessionRepo, codec)

	registerUC := user.NewRegister(userRepo, hasher)
	updateUserUC := user.NewUpdate(userRepo, hasher)
	deleteUserUC := user.NewDelete(userRepo)
	listUsersUC := user.NewList(userRepo)

	createProjectUC := project.NewCreate(projectRepo)
	getProjectUC := project.NewGet(authorizer, projectRepo, queryRepo, lockRepo)
	updateProjectUC := project.NewUpdate(authorizer, projectRepo, lockRepo)
	deleteProjectUC := project.NewDelete(projectRepo)
	listProjectsUC := project.NewList(projectRepo)

	grantUC := access.NewGrant(authorizer, accessRepo, userRepo)
	updateAccessUC := access.NewUpdate(authorizer, accessRepo, projectRepo)
	revokeUC := access.NewRevoke(authorizer, accessRepo, projectRepo)
	listAccessUC := access.NewList(authorizer, accessRepo)

	createQueryUC := query.NewCreate(authorizer, queryRepo)
	updateQueryUC := query.NewUpdate(authorizer, queryRepo)
	deleteQueryUC := query.NewDelete(authorizer, queryRepo)
	runQueryUC := query.NewRun(authorizer, projectRepo, queryRepo, engineClient)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	if redisClient != nil {
		ipLimit, err = middleware.NewRedisRateLimiter(cfg.RatePerIP, redisClient)
		if err != nil {
			log.Fatal().Err(err).Msg("create redis rate limiter")
		}
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:     handlers.NewAuthHandler(loginUC, refreshUC, logoutUC, log),
		UsersHandler:    handlers.NewUsersHandler(registerUC, updateUserUC, deleteUserUC, listUsersUC, log),
		ProjectsHandler: handlers.NewProjectsHandler(createProjectUC, getProjectUC, updateProjectUC, deleteProjectUC, listProjectsUC, log),
		AccessHandler:   handlers.NewAccessHandler(grantUC, updateAccessUC, revokeUC, listAccessUC, log),
		QueriesHandler:  handlers.NewQueriesHandler(createQueryUC, updateQueryUC, deleteQueryUC, runQueryUC, log),
		EngineHandler:   handlers.NewEngineHandler(engineClient, log),
		HealthHandler:   handlers.NewHealthHandler(pool, redisClient),
		RequireAuth:     middleware.NewAuthenticator(codec, sessionRepo).Handler,
		Log:             log,
		Secure:          middleware.NewSecure(middleware.SecureOptions(cfg.Server.IsDevelopment)),
		CORS:            middleware.CORS(cfg.CORS.AllowedOrigins),
		IPRateLimit:     ipLimit,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
