// main package for the text-to-audio service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/upskill-audio/text-to-audio-service/internal/api"
	"github.com/upskill-audio/text-to-audio-service/internal/config"
	"github.com/upskill-audio/text-to-audio-service/internal/core"
	"github.com/upskill-audio/text-to-audio-service/internal/objectstore"
	"github.com/upskill-audio/text-to-audio-service/internal/service"
	"github.com/upskill-audio/text-to-audio-service/internal/synth"
	"github.com/upskill-audio/text-to-audio-service/internal/voices"
	"github.com/upskill-audio/text-to-audio-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "text-to-audio-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// Temporary logger for the bootstrap process; the final logger needs
	// the configured logs directory.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

// serve builds the object graph and runs the HTTP API plus the optional
// NATS worker until interrupted.
func serve(cfg *config.Config, log *logger.Logger) error {
	client := synth.NewHTTPClient(cfg.TTS.BaseURL, cfg.TTS.Timeout())
	invoker := synth.NewInvoker(client, log)
	catalog := voices.NewCatalog(client, cfg.TTS.CatalogTTL())
	generator := service.NewGenerator(catalog, invoker, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, workerErrChan, err := startWorker(ctx, cfg, generator, log)
	if err != nil {
		return err
	}

	handler := api.NewHandler(
		generator,
		client,
		store,
		cfg.TTS.DefaultLanguage,
		cfg.TTS.PreferFemale,
		log,
	)

	server := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrChan := make(chan error, 1)

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serverErrChan <- serveErr
		}
	}()

	log.System("text-to-audio-service listening on %s", cfg.HTTP.Address())

	select {
	case <-ctx.Done():
		log.System("Shutdown signal received")
	case serveErr := <-serverErrChan:
		return fmt.Errorf("HTTP server failed: %w", serveErr)
	case workerErr := <-workerErrChan:
		return fmt.Errorf("NATS worker failed: %w", workerErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", shutdownErr)
	}

	return nil
}

// startWorker connects to NATS and starts the job worker when a NATS URL
// is configured. It returns a nil store and an idle channel otherwise.
func startWorker(
	ctx context.Context,
	cfg *config.Config,
	generator *service.Generator,
	log *logger.Logger,
) (core.ObjectStore, <-chan error, error) {
	idle := make(chan error)

	if !cfg.NATS.WorkerEnabled() {
		log.Info("NATS is not configured, running HTTP-only")

		return nil, idle, nil
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create audio store: %w", err)
	}

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.AudioRequestedSubject,
		store,
		generator,
		log,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS worker: %w", err)
	}

	workerErrChan := make(chan error, 1)

	go func() {
		runErr := natsWorker.Run(ctx)
		if runErr != nil {
			workerErrChan <- runErr
		}
	}()

	log.System("NATS worker listening for jobs on subject: %s", cfg.NATS.AudioRequestedSubject)

	return store, workerErrChan, nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
