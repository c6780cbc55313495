package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvloznov/budgetx/internal/api/middleware"
	"github.com/dvloznov/budgetx/internal/assistant"
	"github.com/dvloznov/budgetx/internal/auth"
	"github.com/dvloznov/budgetx/internal/jobs"
	"github.com/dvloznov/budgetx/internal/store"
	"github.com/rs/zerolog"
)

var testLog = zerolog.Nop()

var errTest = errors.New("service unavailable")

func fileFixture(userID int64, analyticsJSON string) *store.UploadedFile {
	return &store.UploadedFile{
		UserID:           userID,
		OriginalFilename: "fixture.csv",
		StoredFilename:   "abc123_fixture.csv",
		FileSize:         42,
		AnalyticsJSON:    analyticsJSON,
	}
}

// fakeStore is an in-memory stand-in for the storage layer, covering the
// UserStore, FileStore and MessageStore slices the handlers depend on.
type fakeStore struct {
	users    map[string]*store.User
	files    map[int64]*store.UploadedFile
	messages []*store.ChatMessage

	nextUserID int64
	nextFileID int64
	nextMsgID  int64

	failMessages bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*store.User),
		files: make(map[int64]*store.UploadedFile),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	if _, ok := f.users[username]; ok {
		return nil, store.ErrUsernameTaken
	}
	f.nextUserID++
	u := &store.User{ID: f.nextUserID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateFile(_ context.Context, rec *store.UploadedFile) (*store.UploadedFile, error) {
	f.nextFileID++
	rec.ID = f.nextFileID
	rec.UploadDate = time.Now()
	f.files[rec.ID] = rec
	return rec, nil
}

func (f *fakeStore) GetFile(_ context.Context, id, userID int64) (*store.UploadedFile, error) {
	rec, ok := f.files[id]
	if !ok || rec.UserID != userID {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) ListFiles(_ context.Context, userID int64) ([]*store.UploadedFile, error) {
	var out []*store.UploadedFile
	for _, rec := range f.files {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, userID int64, role, content string) (*store.ChatMessage, error) {
	if f.failMessages {
		return nil, errors.New("message store down")
	}
	f.nextMsgID++
	m := &store.ChatMessage{ID: f.nextMsgID, UserID: userID, Role: role, Content: content, Timestamp: time.Now()}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeStore) ListMessages(_ context.Context, userID int64) ([]*store.ChatMessage, error) {
	var out []*store.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecentMessages(_ context.Context, userID int64, limit int) ([]*store.ChatMessage, error) {
	all, _ := f.ListMessages(context.Background(), userID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// fakeBlobs records saves without touching disk.
type fakeBlobs struct {
	saved map[string][]byte
	err   error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{saved: make(map[string][]byte)}
}

func (b *fakeBlobs) Save(_ context.Context, name string, data []byte) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.saved[name] = data
	return "fake://" + name, nil
}

// fakeAssistant scripts the AI responses.
type fakeAssistant struct {
	insight string
	reply   string
	err     error

	lastContext string
	lastHistory []assistant.Message
}

func (a *fakeAssistant) AutoAnalysis(_ context.Context, analyticsJSON string) (string, error) {
	a.lastContext = analyticsJSON
	return a.insight, a.err
}

func (a *fakeAssistant) ChatReply(_ context.Context, analyticsContext string, history []assistant.Message) (string, error) {
	a.lastContext = analyticsContext
	a.lastHistory = history
	return a.reply, a.err
}

// fakeQueue records published jobs and doubles as the job store.
type fakeQueue struct {
	published []*jobs.ReportJob
	pubErr    error
}

func (q *fakeQueue) PublishReport(_ context.Context, job *jobs.ReportJob) error {
	if q.pubErr != nil {
		return q.pubErr
	}
	job.JobID = "job-test-1"
	job.Status = jobs.JobStatusPending
	job.CreatedAt = time.Now()
	q.published = append(q.published, job)
	return nil
}

func (q *fakeQueue) Close() error { return nil }

func (q *fakeQueue) SaveJob(_ context.Context, _ *jobs.ReportJob) error { return nil }

func (q *fakeQueue) GetJob(_ context.Context, jobID string) (*jobs.ReportJob, error) {
	for _, j := range q.published {
		if j.JobID == jobID {
			return j, nil
		}
	}
	return nil, errors.New("job not found")
}

func (q *fakeQueue) ListJobs(_ context.Context, _ jobs.JobFilter) ([]*jobs.ReportJob, error) {
	return q.published, nil
}

// authedRequest routes a request through RequireAuth so the handler sees
// real verified claims, the same way production requests arrive.
func authedRequest(t *testing.T, tokens *auth.Manager, userID int64, username string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	token, err := tokens.IssueToken(userID, username)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	middleware.RequireAuth(tokens)(handler).ServeHTTP(rec, req)
	return rec
}

func testTokens() *auth.Manager {
	return auth.NewManager("handler-test-secret", time.Hour)
}
