package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Sourabsb/tbi-hackathon/internal/async"
	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/export"
	"github.com/Sourabsb/tbi-hackathon/internal/llm"
	"github.com/Sourabsb/tbi-hackathon/internal/ocr"
	"github.com/Sourabsb/tbi-hackathon/internal/pipeline"
	"github.com/Sourabsb/tbi-hackathon/internal/server"
	"github.com/Sourabsb/tbi-hackathon/internal/store"
)

func main() {
	// Lifecycle logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	// Component logger
	appLog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(appLog)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store: disk is authoritative, the cache layer is optional.
	disk, err := store.NewDiskStore(cfg.Store.DataDir, appLog)
	if err != nil {
		log.Fatalf("creating store: %v", err)
	}
	var st store.Store = disk
	if cfg.Store.WatchFiles {
		cached, err := store.NewCachedStore(disk, true, appLog)
		if err != nil {
			log.Warnf("store cache unavailable, serving from disk: %v", err)
		} else {
			st = cached
			defer cached.Close()
		}
	}

	// A misconfigured recognition endpoint fails jobs, not startup.
	var recognizer pipeline.TextRecognizer
	ocrClient, err := ocr.NewClient(cfg.OCR, appLog)
	if err != nil {
		log.Warnf("recognition provider unavailable: %v", err)
		recognizer = ocr.Unconfigured{Err: err}
	} else {
		recognizer = ocrClient
	}

	llmClient := llm.NewClient(cfg.LLM, appLog)
	pool := async.NewExtractorPool(llmClient, appLog,
		async.WithWorkers(cfg.LLM.Workers),
		async.WithQueueSize(cfg.LLM.QueueSize),
	)

	pipe := pipeline.New(st, recognizer, pool, cfg.DOCXEnabled, appLog)
	srv := server.New(cfg, st, pipe, export.NewService(st, appLog), appLog)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()
	log.Infof("serving on %s", cfg.Server.Addr)

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("http shutdown: %v", err)
	}
	pool.Shutdown(shutdownCtx)
	log.Info("stopped.")
}
