package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/cockroach"
	"github.com/Roberadesissai/workout-tracker-sub000/cockroach/migrator"
	"github.com/Roberadesissai/workout-tracker-sub000/config"
	trackerminio "github.com/Roberadesissai/workout-tracker-sub000/minio"
	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/service"
	trackerhttp "github.com/Roberadesissai/workout-tracker-sub000/transport/http"
	charmlog "github.com/charmbracelet/log"
	gokitlog "github.com/go-kit/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nats-io/nats.go"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	errLogger := slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	}))
	infoLogger := slog.New(charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
	}))

	svcLogger := gokitlog.NewLogfmtLogger(gokitlog.NewSyncWriter(os.Stderr))
	svcLogger = gokitlog.With(svcLogger, "ts", gokitlog.DefaultTimestampUTC)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.CockroachURL)
	if err != nil {
		return fmt.Errorf("open cockroach connection pool: %w", err)
	}

	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping cockroach: %w", err)
	}

	migrationStart := time.Now()
	infoLogger.Info("starting cockroach migrations")

	if err := migrator.Migrate(context.Background(), dbPool, cockroach.MigrationsFS); err != nil {
		return fmt.Errorf("migrate cockroach schema: %w", err)
	}

	infoLogger.Info("finished cockroach migrations", "took", time.Since(migrationStart))

	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return fmt.Errorf("create minio client: %w", err)
	}

	minioStore := trackerminio.New(context.Background(), minioClient, cfg.CleanupTimeout)
	go func() {
		for err := range minioStore.Errs() {
			errLogger.Error("minio error", "error", err)
		}
	}()

	bucketsStart := time.Now()
	infoLogger.Info("creating minio buckets")

	for _, bucket := range trackerminio.Buckets {
		if err := minioStore.CreateReadOnlyBucket(context.Background(), bucket); err != nil {
			return fmt.Errorf("create minio bucket %q: %w", bucket, err)
		}
	}

	infoLogger.Info("finished creating minio buckets", "took", time.Since(bucketsStart))

	natsConn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}

	defer natsConn.Close()

	svc := service.New(&service.Config{
		Cockroach: cockroach.New(dbPool),
		Minio:     minioStore,
		Broker:    realtime.NewBroker(natsConn),
		Logger:    svcLogger,

		BaseCtx:           context.Background(),
		BackgroundTimeout: cfg.BackgroundTimeout,

		TokenKey: cfg.TokenKey,
		TokenTTL: cfg.TokenTTL,

		MediaURLPrefix: cfg.MediaURLPrefix,

		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		PushContact:     cfg.PushContact,
	})
	go func() {
		for err := range svc.Errs() {
			errLogger.Error("service error", "error", err)
		}
	}()

	handler := trackerhttp.New(svc, svcLogger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.Routes(),
	}

	infoLogger.Info("starting tracker server", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start tracker server: %w", err)
	}

	return svc.Close()
}
