// Package jobs defines the asynchronous job model used for report
// generation. Report prompts are slow LLM calls, so the API enqueues them
// and clients poll for the result.
package jobs

import (
	"context"
	"time"
)

// JobType identifies the kind of work a job carries.
type JobType string

const (
	// JobTypeGenerateReport is an LLM report-generation job.
	JobTypeGenerateReport JobType = "generate_report"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ReportJob generates one long-form report for an uploaded file.
// Result holds the report text once the job completes.
type ReportJob struct {
	JobID      string `json:"job_id"`
	UserID     int64  `json:"user_id"`
	FileID     int64  `json:"file_id"`
	ReportType string `json:"report_type"`

	Status JobStatus `json:"status"`
	Result string    `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view of a queued unit of work.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ReportJob) GetID() string        { return j.JobID }
func (j *ReportJob) GetType() JobType     { return JobTypeGenerateReport }
func (j *ReportJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The abstraction keeps the door open for a
// distributed queue behind the same API surface.
type Publisher interface {
	PublishReport(ctx context.Context, job *ReportJob) error
	Close() error
}

// Consumer drains the queue through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A non-nil error marks the job failed and
// eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so clients can poll for results.
type JobStore interface {
	SaveJob(ctx context.Context, job *ReportJob) error
	GetJob(ctx context.Context, jobID string) (*ReportJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReportJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	UserID int64
	FileID int64
	Status JobStatus
	Limit  int
	Offset int
}
