package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/budgetx/internal/jobs"
	"github.com/dvloznov/budgetx/internal/jobs/inmemory"
)

func TestCreateReport(t *testing.T) {
	st := newFakeStore()
	if _, err := st.CreateFile(nil, fileFixture(1, `{"total_rows":3}`)); err != nil {
		t.Fatal(err)
	}

	queue := &fakeQueue{}
	h := NewReportsHandler(st, queue, queue, testLog)

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(`{"file_id":1,"report_type":"risk_assessment"}`))
	rec := authedRequest(t, testTokens(), 1, "alice", h.Create, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.Status != string(jobs.JobStatusPending) {
		t.Errorf("response = %+v", resp)
	}

	if len(queue.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(queue.published))
	}
	job := queue.published[0]
	if job.UserID != 1 || job.FileID != 1 || job.ReportType != "risk_assessment" {
		t.Errorf("job = %+v", job)
	}
}

func TestCreateReport_UnknownType(t *testing.T) {
	st := newFakeStore()
	st.CreateFile(nil, fileFixture(1, "{}"))
	queue := &fakeQueue{}
	h := NewReportsHandler(st, queue, queue, testLog)

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(`{"file_id":1,"report_type":"astrology"}`))
	rec := authedRequest(t, testTokens(), 1, "alice", h.Create, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(queue.published) != 0 {
		t.Error("job enqueued for unknown report type")
	}
}

func TestCreateReport_FileNotOwned(t *testing.T) {
	st := newFakeStore()
	st.CreateFile(nil, fileFixture(2, "{}")) // belongs to someone else
	queue := &fakeQueue{}
	h := NewReportsHandler(st, queue, queue, testLog)

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(`{"file_id":1,"report_type":"cost_optimization"}`))
	rec := authedRequest(t, testTokens(), 1, "alice", h.Create, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListReports(t *testing.T) {
	st := newFakeStore()
	jobStore := inmemory.NewStore()
	h := NewReportsHandler(st, &fakeQueue{}, jobStore, testLog)
	tokens := testTokens()

	seed := []*jobs.ReportJob{
		{JobID: "j1", UserID: 1, FileID: 1, ReportType: "risk_assessment", Status: jobs.JobStatusCompleted},
		{JobID: "j2", UserID: 1, FileID: 2, ReportType: "cost_optimization", Status: jobs.JobStatusPending},
		{JobID: "j3", UserID: 2, FileID: 3, ReportType: "risk_assessment", Status: jobs.JobStatusCompleted},
	}
	for _, j := range seed {
		if err := jobStore.SaveJob(context.Background(), j); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	// Listing is scoped to the caller.
	rec := authedRequest(t, tokens, 1, "alice", h.List,
		httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var list []*jobs.ReportJob
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d jobs, want 2", len(list))
	}
	for _, j := range list {
		if j.UserID != 1 {
			t.Errorf("job %s belongs to user %d", j.JobID, j.UserID)
		}
	}

	// Query filters narrow by file and status.
	rec = authedRequest(t, tokens, 1, "alice", h.List,
		httptest.NewRequest(http.MethodGet, "/api/reports?file_id=2&status=pending", nil))
	list = nil
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 1 || list[0].JobID != "j2" {
		t.Errorf("filtered list = %+v", list)
	}

	// A user with no jobs gets an empty array, not null.
	rec = authedRequest(t, tokens, 3, "carol", h.List,
		httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	if body := rec.Body.String(); body == "null\n" {
		t.Error("empty listing must serialize as [], not null")
	}

	// Bad query parameters are rejected.
	rec = authedRequest(t, tokens, 1, "alice", h.List,
		httptest.NewRequest(http.MethodGet, "/api/reports?file_id=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad file_id", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	st := newFakeStore()
	st.CreateFile(nil, fileFixture(1, "{}"))
	queue := &fakeQueue{}
	h := NewReportsHandler(st, queue, queue, testLog)
	tokens := testTokens()

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(`{"file_id":1,"report_type":"strategic_recommendations"}`))
	if rec := authedRequest(t, tokens, 1, "alice", h.Create, req); rec.Code != http.StatusAccepted {
		t.Fatalf("create failed: %s", rec.Body)
	}
	jobID := queue.published[0].JobID

	// Owner sees the job.
	rec := authedRequest(t, tokens, 1, "alice", h.Get,
		httptest.NewRequest(http.MethodGet, "/api/report/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var job jobs.ReportJob
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.JobID != jobID || job.ReportType != "strategic_recommendations" {
		t.Errorf("job = %+v", job)
	}

	// A different user gets a 404, not someone else's job.
	rec = authedRequest(t, tokens, 2, "bob", h.Get,
		httptest.NewRequest(http.MethodGet, "/api/report/"+jobID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	// Unknown job ID.
	rec = authedRequest(t, tokens, 1, "alice", h.Get,
		httptest.NewRequest(http.MethodGet, "/api/report/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
