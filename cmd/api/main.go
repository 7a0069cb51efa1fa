package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/fieldservice/internal/catalog"
	"github.com/abduss/fieldservice/internal/config"
	"github.com/abduss/fieldservice/internal/logger"
	"github.com/abduss/fieldservice/internal/media"
	"github.com/abduss/fieldservice/internal/notify"
	"github.com/abduss/fieldservice/internal/partpics"
	"github.com/abduss/fieldservice/internal/server"
	"github.com/abduss/fieldservice/internal/storage"
	"github.com/abduss/fieldservice/internal/thumbnail"
	"github.com/abduss/fieldservice/internal/workorder"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// a missing .env is fine; the environment may already be populated
	envErr := godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug("no .env file loaded", zap.Error(envErr))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.OpenCatalog(ctx, cfg.Postgres, log)
	if err != nil {
		log.Fatal("open catalog database", zap.Error(err))
	}
	defer dbPool.Close()

	mediaStore, err := media.NewStore(cfg.Media.Root)
	if err != nil {
		log.Fatal("open media root", zap.Error(err))
	}

	var minioClient *minio.Client
	var pictureStore *partpics.Service
	switch cfg.Media.PartsBackend {
	case config.BackendMinIO:
		minioClient, err = storage.OpenPartsBucket(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("open part picture bucket", zap.Error(err))
		}
		pictureStore = partpics.NewService(partpics.NewMinIOStore(minioClient, cfg.MinIO.Bucket, cfg.MinIO.PresignTTL), log)
	default:
		disk, err := partpics.NewDiskStore(cfg.Media.PartsRoot)
		if err != nil {
			log.Fatal("open parts media root", zap.Error(err))
		}
		pictureStore = partpics.NewService(disk, log)
	}

	workOrders := workorder.NewService(
		mediaStore,
		newThumbnailer(cfg.Thumbnail, log),
		newNotifier(cfg.Notify, log),
		cfg.Media.PublicBaseURL,
		log,
	)
	catalogService := catalog.NewService(catalog.NewRepository(dbPool), log)

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           dbPool,
		ObjectStore:  minioClient,
		WorkOrders:   workOrders,
		Catalog:      catalogService,
		PartPictures: pictureStore,
		Logger:       log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("work order API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("media_root", mediaStore.Root()),
			zap.String("parts_backend", cfg.Media.PartsBackend),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	workOrders.Wait()
}

// newThumbnailer returns nil when thumbnails are disabled or ffmpeg is missing.
func newThumbnailer(cfg config.ThumbnailConfig, log *zap.Logger) workorder.Thumbnailer {
	if !cfg.Enabled {
		log.Info("video thumbnails disabled")
		return nil
	}
	gen := thumbnail.NewGenerator(cfg.FFmpegBinary, cfg.Timeout)
	if !gen.Available() {
		log.Warn("ffmpeg not found, video thumbnails will be skipped", zap.String("binary", cfg.FFmpegBinary))
		return nil
	}
	return gen
}

func newNotifier(cfg config.NotifyConfig, log *zap.Logger) notify.Notifier {
	if cfg.ResendAPIKey == "" {
		log.Info("e-mail notifications disabled, uploads will be logged only")
		return notify.NewLogNotifier(log)
	}
	n, err := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.From, cfg.To, cfg.Timeout)
	if err != nil {
		log.Fatal("configure notifier", zap.Error(err))
	}
	return n
}
