package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dvloznov/budgetx/internal/analytics"
	"github.com/dvloznov/budgetx/internal/api/middleware"
	"github.com/dvloznov/budgetx/internal/blobstore"
	"github.com/dvloznov/budgetx/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds the multipart form held in memory per upload.
const maxUploadBytes = 32 << 20

// insightUnavailable is shown when the assistant cannot produce an insight.
const insightUnavailable = "AI analysis unavailable."

// FileStore is the slice of the storage layer the upload endpoints need.
type FileStore interface {
	CreateFile(ctx context.Context, f *store.UploadedFile) (*store.UploadedFile, error)
	GetFile(ctx context.Context, id, userID int64) (*store.UploadedFile, error)
	ListFiles(ctx context.Context, userID int64) ([]*store.UploadedFile, error)
	CreateMessage(ctx context.Context, userID int64, role, content string) (*store.ChatMessage, error)
}

// Insighter produces the upload-time auto-analysis.
type Insighter interface {
	AutoAnalysis(ctx context.Context, analyticsJSON string) (string, error)
}

// FilesHandler handles CSV uploads and file listings.
type FilesHandler struct {
	files     FileStore
	blobs     blobstore.Store
	assistant Insighter // nil when the AI service is not configured
	log       zerolog.Logger
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(files FileStore, blobs blobstore.Store, assistant Insighter, log zerolog.Logger) *FilesHandler {
	return &FilesHandler{files: files, blobs: blobs, assistant: assistant, log: log}
}

// Upload handles POST /api/upload
//
// The upload is parsed and analyzed synchronously; the raw bytes and the
// serialized summary are persisted, and the auto-analysis insight is
// recorded as an assistant chat message with an embedded dashboard payload.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		middleware.WriteError(w, http.StatusBadRequest, "Only CSV files are accepted")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}

	table, err := analytics.ParseTable(content, filename)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := analytics.Analyze(table)
	payload, err := json.Marshal(summary)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to serialize analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}

	storedName := strings.ReplaceAll(uuid.New().String(), "-", "") + "_" + filename
	location, err := h.blobs.Save(ctx, storedName, content)
	if err != nil {
		h.log.Error().Err(err).Str("stored_name", storedName).Msg("Failed to store upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	rec, err := h.files.CreateFile(ctx, &store.UploadedFile{
		UserID:           userID,
		OriginalFilename: filename,
		StoredFilename:   storedName,
		FileSize:         int64(len(content)),
		AnalyticsJSON:    string(payload),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save file record")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save file record")
		return
	}

	if _, err := h.files.CreateMessage(ctx, userID, "user", "Uploaded file: "+filename); err != nil {
		h.log.Error().Err(err).Msg("Failed to record upload message")
	}

	insight := h.autoAnalysis(ctx, string(payload))

	assistantContent := fmt.Sprintf("**Analysis for %s:**\n\n%s\n\n[DASHBOARD_DATA]%s[/DASHBOARD_DATA]",
		filename, insight, payload)
	if _, err := h.files.CreateMessage(ctx, userID, "assistant", assistantContent); err != nil {
		h.log.Error().Err(err).Msg("Failed to record insight message")
	}

	h.log.Info().
		Int64("file_id", rec.ID).
		Str("filename", filename).
		Str("location", location).
		Int("rows", summary.TotalRows).
		Bool("financial", summary.IsFinancialData).
		Msg("File uploaded and analyzed")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"file_id":    rec.ID,
		"filename":   filename,
		"analytics":  summary,
		"ai_insight": insight,
	})
}

func (h *FilesHandler) autoAnalysis(ctx context.Context, analyticsJSON string) string {
	if h.assistant == nil {
		return insightUnavailable
	}
	insight, err := h.assistant.AutoAnalysis(ctx, analyticsJSON)
	if err != nil {
		h.log.Error().Err(err).Msg("Auto-analysis failed")
		return insightUnavailable
	}
	return insight
}

// List handles GET /api/files
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	files, err := h.files.ListFiles(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list files")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	out := make([]map[string]interface{}, 0, len(files))
	for _, f := range files {
		var summary json.RawMessage
		if f.AnalyticsJSON != "" {
			summary = json.RawMessage(f.AnalyticsJSON)
		}
		out = append(out, map[string]interface{}{
			"id":        f.ID,
			"filename":  f.OriginalFilename,
			"size":      f.FileSize,
			"uploaded":  f.UploadDate,
			"analytics": summary,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, out)
}
