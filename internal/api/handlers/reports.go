package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/budgetx/internal/api/middleware"
	"github.com/dvloznov/budgetx/internal/assistant"
	"github.com/dvloznov/budgetx/internal/jobs"
	"github.com/dvloznov/budgetx/internal/store"
	"github.com/rs/zerolog"
)

// ReportsHandler enqueues report jobs and serves their status.
type ReportsHandler struct {
	files     FileStore
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(files FileStore, publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{files: files, publisher: publisher, jobStore: jobStore, log: log}
}

type reportRequest struct {
	FileID     int64  `json:"file_id"`
	ReportType string `json:"report_type"`
}

// Create handles POST /api/report
//
// The report itself is generated asynchronously; the response carries a
// job ID the client polls via GET /api/report/{id}.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !assistant.IsReportKind(req.ReportType) {
		middleware.WriteError(w, http.StatusBadRequest,
			"Unknown report type, expected one of: "+strings.Join(assistant.ReportKinds(), ", "))
		return
	}

	if _, err := h.files.GetFile(ctx, req.FileID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "File not found")
			return
		}
		h.log.Error().Err(err).Int64("file_id", req.FileID).Msg("Failed to look up file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create report")
		return
	}

	job := &jobs.ReportJob{
		UserID:     userID,
		FileID:     req.FileID,
		ReportType: req.ReportType,
	}
	if err := h.publisher.PublishReport(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue report job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Report queue unavailable")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Int64("file_id", req.FileID).
		Str("report_type", req.ReportType).
		Msg("Report job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

// List handles GET /api/reports
//
// Optional query parameters narrow the listing: file_id, status, limit.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	filter := jobs.JobFilter{UserID: userID}
	q := r.URL.Query()
	if v := q.Get("file_id"); v != "" {
		fileID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid file_id")
			return
		}
		filter.FileID = fileID
	}
	if v := q.Get("status"); v != "" {
		filter.Status = jobs.JobStatus(v)
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	list, err := h.jobStore.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list report jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	if list == nil {
		list = []*jobs.ReportJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /api/report/{id}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.ClaimsFrom(ctx)
	userID, err := claims.UserID()
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/report/")
	if jobID == "" || strings.Contains(jobID, "/") {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.jobStore.GetJob(ctx, jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Report job not found")
		return
	}
	if job.UserID != userID {
		// Jobs are scoped to their owner; leak nothing about other users' jobs.
		middleware.WriteError(w, http.StatusNotFound, "Report job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
