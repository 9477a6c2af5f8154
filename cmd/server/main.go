package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"pcps/internal/events"
	familyhandler "pcps/internal/family/handler"
	familyservice "pcps/internal/family/service"
	familystore "pcps/internal/family/store"
	httpapi "pcps/internal/http"
	"pcps/internal/notify"
	"pcps/internal/platform/awsconfig"
	"pcps/internal/platform/config"
	"pcps/internal/platform/database"
	"pcps/internal/platform/httpserver"
	"pcps/internal/platform/logger"
	"pcps/internal/platform/metrics"
	"pcps/internal/platform/otel"
	redisclient "pcps/internal/platform/redis"
	"pcps/internal/syncengine"
	syncmetrics "pcps/internal/syncengine/metrics"
	"pcps/internal/syncengine/transport"
	targethandler "pcps/internal/targets/handler"
	targetservice "pcps/internal/targets/service"
	targetstore "pcps/internal/targets/store"
	"pcps/pkg/platform/circuit"
)

// main wires dependencies, exposes the HTTP router and owns the server
// lifecycle. Business logic lives in the internal domain packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type closer func() error

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}()

	shutdownTracing, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return err
	}
	closers = append(closers, func() error { return shutdownTracing(context.Background()) })

	awsLoader := &lazyAWS{cfg: cfg.AWS}
	health := map[string]httpapi.HealthCheck{}

	docs, err := buildDocumentStore(ctx, cfg, awsLoader, health, &closers)
	if err != nil {
		return err
	}

	targetStore, err := buildTargetStore(ctx, cfg, health, &closers)
	if err != nil {
		return err
	}
	targets := targetservice.New(targetStore, targetservice.WithLogger(log))
	if cfg.Sync.SeedSuggested {
		if seeded, err := targets.SeedSuggested(ctx); err != nil {
			return fmt.Errorf("seed suggested targets: %w", err)
		} else if seeded {
			log.Info("seeded suggested targets")
		}
	}

	tr, err := buildTransport(ctx, cfg, awsLoader)
	if err != nil {
		return err
	}
	engine, err := syncengine.New(docs, tr,
		syncengine.WithTimeout(cfg.Sync.DeliveryTimeout),
		syncengine.WithLogger(log),
		syncengine.WithMetrics(syncmetrics.New()),
	)
	if err != nil {
		return err
	}

	publisher, err := buildPublisher(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}

	opts := []familyservice.Option{
		familyservice.WithLogger(log),
		familyservice.WithPublisher(publisher),
	}
	if cfg.Notify.FromAddress != "" {
		awsCfg, err := awsLoader.get(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, familyservice.WithNotifier(
			notify.New(sesv2.NewFromConfig(awsCfg), cfg.Notify.FromAddress, cfg.Notify.FromName, notify.WithLogger(log)),
		))
	}
	family, err := familyservice.New(docs, engine, targets, opts...)
	if err != nil {
		return err
	}
	if cfg.Server.SeedExample {
		if _, err := family.SeedExample(ctx); err != nil {
			return err
		}
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        metrics.New(),
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         health,
	},
		familyhandler.New(family, log),
		targethandler.New(targets, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Sync.DeliveryTimeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pcps", "addr", cfg.Server.Addr, "store", cfg.Store.Backend, "transport", tr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// lazyAWS loads the shared AWS config on first use, so deployments without
// S3, SES or Secrets Manager never need credentials.
type lazyAWS struct {
	cfg    config.AWS
	loaded *aws.Config
}

func (l *lazyAWS) get(ctx context.Context) (aws.Config, error) {
	if l.loaded != nil {
		return *l.loaded, nil
	}
	c, err := awsconfig.Load(ctx, l.cfg)
	if err != nil {
		return aws.Config{}, err
	}
	l.loaded = &c
	return c, nil
}

func buildDocumentStore(ctx context.Context, cfg config.Config, lazy *lazyAWS, health map[string]httpapi.HealthCheck, closers *[]closer) (familyservice.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return familystore.NewInMemory(), nil
	case "s3":
		if cfg.Store.S3Bucket == "" {
			return nil, errors.New("PCPS_S3_BUCKET is required for the s3 store")
		}
		awsCfg, err := lazy.get(ctx)
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWS.Endpoint != ""
		})
		return familystore.NewS3(client, cfg.Store.S3Bucket, cfg.Store.S3Key), nil
	default:
		db, err := database.Open(ctx, cfg.Store.Backend, database.DialectConfig{
			Path: cfg.Store.SQLitePath,
			URL:  cfg.Store.DSN,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, db.Close)
		health["database"] = db.PingContext
		return familystore.NewSQL(db), nil
	}
}

func buildTargetStore(ctx context.Context, cfg config.Config, health map[string]httpapi.HealthCheck, closers *[]closer) (targetservice.Store, error) {
	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return targetstore.NewInMemory(), nil
	}
	*closers = append(*closers, client.Close)
	health["redis"] = client.Health
	return targetstore.NewRedis(client.Client, cfg.Redis.TargetsKey), nil
}

func buildTransport(ctx context.Context, cfg config.Config, lazy *lazyAWS) (syncengine.Transport, error) {
	if cfg.Sync.Transport == "simulated" {
		return transport.NewSimulated(cfg.Sync.SimulatedLatency, cfg.Sync.SimulatedFailing...), nil
	}
	if cfg.Sync.Transport != "http" {
		return nil, fmt.Errorf("unknown transport %q", cfg.Sync.Transport)
	}

	key := []byte(cfg.Sync.SigningKey)
	if len(key) == 0 && cfg.Sync.SigningSecretID != "" {
		awsCfg, err := lazy.get(ctx)
		if err != nil {
			return nil, err
		}
		key, err = awsconfig.SigningKey(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.Sync.SigningSecretID)
		if err != nil {
			return nil, err
		}
	}

	var opts []transport.HTTPOption
	if len(key) > 0 {
		signer, err := transport.NewSigner(key, cfg.Sync.TokenTTL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, transport.WithSigner(signer))
	}
	return transport.NewHTTP(opts...), nil
}

func buildPublisher(ctx context.Context, cfg config.Config, log *slog.Logger, closers *[]closer) (familyservice.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NewInMemory(1000), nil
	}
	cl, err := events.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, func() error { cl.Close(); return nil })

	if err := events.EnsureTopic(ctx, cl, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
		// The broker may still come up; the breaker buffers until it does.
		log.Warn("event topic not ensured", "topic", cfg.Kafka.Topic, "error", err)
	}
	pub, err := events.NewKafka(cl, cfg.Kafka.Topic,
		events.WithProduceTimeout(cfg.Kafka.ProduceTimeout),
		events.WithBreaker(circuit.New("kafka",
			circuit.WithFailureThreshold(cfg.Kafka.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.Kafka.SuccessThreshold),
		)),
		events.WithKafkaLogger(log),
		events.WithKafkaMetrics(events.NewMetrics()),
	)
	if err != nil {
		return nil, err
	}
	// Runs before the client closes so a running flush can finish.
	*closers = append(*closers, func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return pub.Close(closeCtx)
	})
	return pub, nil
}
