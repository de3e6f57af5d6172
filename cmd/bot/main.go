package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/alexanderjung3838-wq/roboentrega/internal/adapter/cache"
	"github.com/alexanderjung3838-wq/roboentrega/internal/adapter/meli"
	"github.com/alexanderjung3838-wq/roboentrega/internal/config"
	httptransport "github.com/alexanderjung3838-wq/roboentrega/internal/http"
	"github.com/alexanderjung3838-wq/roboentrega/internal/http/handler"
	"github.com/alexanderjung3838-wq/roboentrega/internal/repository"
	"github.com/alexanderjung3838-wq/roboentrega/internal/server"
	"github.com/alexanderjung3838-wq/roboentrega/internal/service"
	"github.com/alexanderjung3838-wq/roboentrega/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newCredentialRepository,
			newProcessedOrderLedger,
			newMarketplaceClient,
			newCredentialService,
			newOrderPipeline,
			newBotHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

// newCredentialRepository picks the store backend from the DATABASE_URL
// scheme: mongodb:// (the original deployment) or postgres://.
func newCredentialRepository(lc fx.Lifecycle, cfg config.Config) (repository.CredentialRepository, error) {
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "mongodb://"), strings.HasPrefix(cfg.DatabaseURL, "mongodb+srv://"):
		return newMongoRepository(lc, cfg)
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		return newPostgresRepository(lc, cfg)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %s", cfg.DatabaseURL)
	}
}

func newMongoRepository(lc fx.Lifecycle, cfg config.Config) (repository.CredentialRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(mongooptions.Client().ApplyURI(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return repository.NewMongoCredentialRepo(client.Database("roboentrega")), nil
}

func newPostgresRepository(lc fx.Lifecycle, cfg config.Config) (repository.CredentialRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := repository.NewPostgresCredentialRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return repo, nil
}

// newProcessedOrderLedger builds the webhook dedupe ledger. Without Redis the
// ledger is a noop and redelivered events may message a buyer twice.
func newProcessedOrderLedger(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.ProcessedOrderLedger, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, webhook dedupe disabled")
		return repository.NoopLedger{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return cacheadapter.NewRedisLedger(client, cfg.ProcessedOrderTTL), nil
}

func newMarketplaceClient(cfg config.Config) meli.API {
	creds := meli.Credentials{
		AppID:        cfg.AppID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
	}
	return meli.NewHTTPClient(creds, cfg.APIBaseURL, cfg.AuthBaseURL, &http.Client{
		Timeout: cfg.OutboundTimeout,
	})
}

func newCredentialService(repo repository.CredentialRepository, api meli.API, cfg config.Config, logger *zap.Logger) *service.CredentialService {
	return service.NewCredentialService(repo, api, cfg.RefreshSkew, logger)
}

func newOrderPipeline(creds *service.CredentialService, api meli.API, ledger repository.ProcessedOrderLedger, cfg config.Config, logger *zap.Logger) *service.OrderPipeline {
	return service.NewOrderPipeline(creds, api, service.DefaultRules(), ledger, cfg.OutboundTimeout, logger)
}

func newBotHandler(api meli.API, creds *service.CredentialService, pipeline *service.OrderPipeline, logger *zap.Logger) *handler.BotHandler {
	return handler.NewBotHandler(api, creds, pipeline, logger)
}

func useTelemetry(provider *telemetry.Provider) {
	_ = provider.Tracer()
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger, sd fx.Shutdowner) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				addr := ":" + cfg.HTTPPort
				logger.Info("http server starting", zap.String("addr", addr))
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
