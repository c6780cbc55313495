package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/budgetx/internal/api/handlers"
	"github.com/dvloznov/budgetx/internal/api/middleware"
	"github.com/dvloznov/budgetx/internal/assistant"
	"github.com/dvloznov/budgetx/internal/auth"
	"github.com/dvloznov/budgetx/internal/blobstore"
	"github.com/dvloznov/budgetx/internal/config"
	"github.com/dvloznov/budgetx/internal/jobs"
	"github.com/dvloznov/budgetx/internal/jobs/inmemory"
	"github.com/dvloznov/budgetx/internal/logger"
	"github.com/dvloznov/budgetx/internal/store"
	"github.com/rs/zerolog"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New()

	ctx := context.Background()

	// Connect to Postgres and apply the schema
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	// Pick the blob store: GCS when a bucket is configured, local disk
	// otherwise.
	var blobs blobstore.Store
	if cfg.GCSBucket != "" {
		blobs = blobstore.NewGCS(cfg.GCSBucket)
		log.Info().Str("bucket", cfg.GCSBucket).Msg("Storing uploads in GCS")
	} else {
		disk, err := blobstore.NewDisk(cfg.UploadDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create upload directory")
		}
		blobs = disk
		log.Info().Str("dir", cfg.UploadDir).Msg("Storing uploads on local disk")
	}

	// The assistant is optional: without an API key the server runs
	// degraded with fixed fallback responses.
	ai, err := assistant.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Warn().Err(err).Msg("AI assistant disabled")
		ai = nil
	} else {
		log.Info().Str("model", ai.Model()).Msg("AI assistant enabled")
	}

	tokens := auth.NewManager(cfg.JWTSecret, tokenTTL)

	// Initialize job infrastructure for report generation
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	reportHandler := makeReportHandler(db, ai, log)

	log.Info().Msg("Starting report workers")
	if err := jobQueue.Start(workerCtx, reportHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start report workers")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, tokens, log)
	filesHandler := newFilesHandler(db, blobs, ai, log)
	chatHandler := newChatHandler(db, ai, log)
	reportsHandler := handlers.NewReportsHandler(db, jobQueue, jobStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/register", methodPost(authHandler.Register))
	mux.HandleFunc("/api/login", methodPost(authHandler.Login))

	requireAuth := middleware.RequireAuth(tokens)

	mux.Handle("/api/upload", requireAuth(methodPost(filesHandler.Upload)))
	mux.Handle("/api/files", requireAuth(methodGet(filesHandler.List)))
	mux.Handle("/api/chat", requireAuth(methodPost(chatHandler.Chat)))
	mux.Handle("/api/chat/history", requireAuth(methodGet(chatHandler.History)))
	mux.Handle("/api/report", requireAuth(methodPost(reportsHandler.Create)))
	mux.Handle("/api/report/", requireAuth(methodGet(reportsHandler.Get)))
	mux.Handle("/api/reports", requireAuth(methodGet(reportsHandler.List)))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

// newFilesHandler keeps the typed-nil assistant out of the interface field.
func newFilesHandler(db *store.Store, blobs blobstore.Store, ai *assistant.Client, log zerolog.Logger) *handlers.FilesHandler {
	if ai == nil {
		return handlers.NewFilesHandler(db, blobs, nil, log)
	}
	return handlers.NewFilesHandler(db, blobs, ai, log)
}

func newChatHandler(db *store.Store, ai *assistant.Client, log zerolog.Logger) *handlers.ChatHandler {
	if ai == nil {
		return handlers.NewChatHandler(db, db, nil, log)
	}
	return handlers.NewChatHandler(db, db, ai, log)
}

// makeReportHandler builds the worker that turns a queued report job into a
// generated report via the assistant.
func makeReportHandler(db *store.Store, ai *assistant.Client, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.ReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Int64("file_id", reportJob.FileID).
			Str("report_type", reportJob.ReportType).
			Msg("Processing report job")

		if ai == nil {
			return fmt.Errorf("AI assistant is not configured")
		}

		file, err := db.GetFile(ctx, reportJob.FileID, reportJob.UserID)
		if err != nil {
			return fmt.Errorf("load file %d: %w", reportJob.FileID, err)
		}

		var meta struct {
			TotalRows int `json:"total_rows"`
		}
		_ = json.Unmarshal([]byte(file.AnalyticsJSON), &meta)

		result, err := ai.Report(ctx, reportJob.ReportType, file.AnalyticsJSON, file.OriginalFilename, meta.TotalRows)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		reportJob.Result = result

		log.Info().
			Str("job_id", reportJob.JobID).
			Int("result_len", len(result)).
			Msg("Report job completed")

		return nil
	}
}

func methodPost(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func methodGet(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
