package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/overtone-labs/voxd/internal/archive"
	"github.com/overtone-labs/voxd/internal/bus"
	"github.com/overtone-labs/voxd/internal/config"
	"github.com/overtone-labs/voxd/internal/ingest"
	"github.com/overtone-labs/voxd/internal/natsserver"
	"github.com/overtone-labs/voxd/internal/pipeline"
	"github.com/overtone-labs/voxd/internal/runtime"
	"github.com/overtone-labs/voxd/internal/store"
	"github.com/overtone-labs/voxd/internal/stt"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "voxd.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Telemetry.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedded, err := natsserver.Start(cfg.Bus, logger)
	if err != nil {
		logger.Error("failed to start embedded NATS server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(ctx, cfg.Bus, logger)
	if err != nil {
		logger.Error("failed to connect to NATS", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer busClient.Close()

	recognizer, closeRecognizer, err := buildRecognizer(cfg.STT, logger)
	if err != nil {
		logger.Error("failed to build recognizer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRecognizer()

	metrics, err := pipeline.NewMetrics()
	if err != nil {
		logger.Warn("failed to register pipeline metrics", slog.String("error", err.Error()))
	}

	ingestSvc := ingest.NewService(ctx, cfg.Pipeline, busClient, recognizer, metrics, logger)
	if err := ingestSvc.Start(); err != nil {
		logger.Error("failed to start ingest service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ingestSvc.Close()

	var archiveSvc *archive.Service
	if cfg.Store.Enabled {
		transcriptStore, err := store.Open(ctx, cfg.Store, logger)
		if err != nil {
			logger.Error("failed to open transcript store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer transcriptStore.Close()

		archiveSvc = archive.NewService(ctx, transcriptStore, busClient, logger)
		if err := archiveSvc.Start(); err != nil {
			logger.Error("failed to start archive service", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer archiveSvc.Close()
	}

	rt := runtime.New(cfg, logger)
	rt.RegisterHealthCheck(busClient.Healthy)
	rt.RegisterHealthCheck(ingestSvc.Healthy)
	if archiveSvc != nil {
		rt.RegisterHealthCheck(archiveSvc.Healthy)
	}

	if err := rt.Start(ctx); err != nil {
		logger.Error("runtime exited with error", slog.String("error", err.Error()))
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func buildRecognizer(cfg config.STTConfig, logger *slog.Logger) (stt.Recognizer, func(), error) {
	switch cfg.Mode {
	case "mock":
		logger.Warn("using mock recognizer, transcripts will be placeholders")
		return stt.NewMockRecognizer(), func() {}, nil
	case "exec":
		rec, err := stt.NewExecRecognizer(cfg)
		if err != nil {
			return nil, nil, err
		}
		return rec, func() {}, nil
	case "whisper":
		rec, err := stt.NewWhisperRecognizer(cfg)
		if err != nil {
			return nil, nil, err
		}
		return rec, func() {
			if err := rec.Close(); err != nil {
				logger.Warn("failed to close whisper model", slog.String("error", err.Error()))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown stt mode %q", cfg.Mode)
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
