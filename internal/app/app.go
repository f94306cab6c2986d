// Package app assembles the HTTP application from configuration. The server
// and Lambda entrypoints share it.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/research-chat/internal/api/http"
	"github.com/spec-kit/research-chat/internal/api/http/handlers"
	"github.com/spec-kit/research-chat/internal/agent"
	"github.com/spec-kit/research-chat/internal/auth"
	"github.com/spec-kit/research-chat/internal/config"
	"github.com/spec-kit/research-chat/internal/events"
	"github.com/spec-kit/research-chat/internal/observability"
	"github.com/spec-kit/research-chat/internal/persistence"
	"github.com/spec-kit/research-chat/internal/repository"
	"github.com/spec-kit/research-chat/internal/service"
	"github.com/spec-kit/research-chat/internal/worker"
)

// App holds the long-lived clients and the fiber application built on them.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *fiber.App

	logSink *observability.CloudWatchWriter
	closers []func()
}

// New builds every client once and wires them into the HTTP application.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	awsCfg, err := persistence.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	var loggerOpts []observability.LoggerOption
	if cfg.Logger.CloudWatchGroup != "" {
		a.logSink = observability.NewCloudWatchWriter(observability.NewCloudWatchClient(awsCfg), cfg.Logger.CloudWatchGroup)
		loggerOpts = append(loggerOpts, observability.WithRemoteSink(a.logSink))
	}
	a.Logger, err = observability.NewLogger(cfg.Logger, loggerOpts...)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := a.openCredentialStore(ctx, awsCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.TokenTTL)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		a.Logger.Warn("JWT_SECRET is not set; token issuance and verification will fail")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, a.Logger))

	authService := service.NewAuthService(service.AuthDependencies{
		Credentials: store,
		Tokens:      tokens,
		Hasher:      auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Dispatcher:  dispatcher,
		Logger:      a.Logger,
	})
	invoker := agent.NewBedrockInvoker(agent.NewBedrockClient(awsCfg))
	chatService := service.NewChatService(invoker, cfg.Agent, dispatcher, a.Logger)

	metrics := observability.NewMetrics()
	a.HTTP = fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(a.HTTP, a.Logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(a.HTTP, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, metrics),
		Auth:    handlers.NewAuthHandler(authService),
		Chat:    handlers.NewChatHandler(chatService),
		Session: auth.NewSessionMiddleware(tokens, a.Logger),
	})

	a.Logger.Info("application initialised",
		zap.String("env", cfg.App.Env),
		zap.String("credential_store", cfg.Store.Kind),
		zap.Bool("cloudwatch_logs", a.logSink != nil),
	)
	return a, nil
}

func (a *App) openCredentialStore(ctx context.Context, awsCfg aws.Config) (repository.CredentialRepository, error) {
	cfg := a.Config
	switch cfg.Store.Kind {
	case config.StoreDynamoDB:
		client := persistence.NewDynamoDB(awsCfg, cfg.Store)
		return repository.NewDynamoCredentialRepository(client, cfg.Store.DynamoDBTable), nil
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), a.Logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return repository.NewPostgresCredentialRepository(pg.PoolHandle()), nil
	case config.StoreMemory:
		a.Logger.Warn("using in-memory credential store; accounts are lost on restart")
		return repository.NewMemoryCredentialRepository(), nil
	default:
		return nil, fmt.Errorf("unknown credential store %q", cfg.Store.Kind)
	}
}

// StartLogFlusher ships buffered remote logs on the configured interval until
// ctx is done. Without a remote sink the returned channel is already closed.
func (a *App) StartLogFlusher(ctx context.Context) <-chan struct{} {
	if a.logSink == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return worker.StartLogFlusher(ctx, a.logSink, a.Config.Logger.FlushInterval(), a.Logger)
}

// Sync flushes the logger, including any remote sink.
func (a *App) Sync() {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// Close releases store connections and flushes logs.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.Sync()
}
