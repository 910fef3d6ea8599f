package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/alert-relay/internal/relay"
	"github.com/your-org/alert-relay/pkg/bus"
	"github.com/your-org/alert-relay/pkg/config"
	"github.com/your-org/alert-relay/pkg/kafka"
	"github.com/your-org/alert-relay/pkg/logger"
	"github.com/your-org/alert-relay/pkg/storage"
	"github.com/your-org/alert-relay/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  parseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	store, err := storage.New(storage.Config{
		Provider:     cfg.Storage.Provider,
		LocalDir:     cfg.Storage.LocalDir,
		URLPrefix:    cfg.Storage.URLPrefix,
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		Bucket:       cfg.Storage.Bucket,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UseSSL:       cfg.Storage.UseSSL,
		SignedURLTTL: cfg.Storage.SignedURLTTL,
	})
	if err != nil {
		logr.Fatal("init storage backend", zap.Error(err))
	}

	hub := bus.NewHub(cfg.Bus.SessionBuffer, logr)

	params := relay.Params{
		Store:  store,
		Hub:    hub,
		Logger: logr,
	}
	if len(cfg.Kafka.Brokers) > 0 {
		params.Mirror = kafka.NewMirror(kafka.MirrorConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  cfg.Kafka.Retries,
		})
	}

	service := relay.NewService(params)

	handlerCfg := relay.HandlerConfig{
		MaxSizeBytes: cfg.Upload.MaxSizeBytes,
		FormMemBytes: cfg.Upload.MultipartMemBytes,
		StaticDir:    cfg.Static.Dir,
	}
	if cfg.Storage.Provider == "local" {
		handlerCfg.UploadsDir = cfg.Storage.LocalDir
		handlerCfg.UploadsPath = cfg.Storage.URLPrefix
	}

	handler := relay.NewHTTPHandler(service, hub, logr, handlerCfg)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		hub.Close()
		if err := service.Close(shutdownCtx); err != nil {
			logr.Error("service shutdown failed", zap.Error(err))
		}
	}()

	logr.Info("relay service starting",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage_provider", cfg.Storage.Provider),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}

func parseResourceAttributes(raw string) map[string]string {
	if raw == "" {
		return map[string]string{}
	}
	attrs := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" || !strings.Contains(pair, "=") {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return attrs
}
