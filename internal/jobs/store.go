package jobs

import (
	"context"
	"time"

	"leadscout-engine/internal/domain"
)

// JobPatch carries partial updates; nil fields are left untouched.
type JobPatch struct {
	Status                *domain.JobStatus
	TotalListings         *int
	SuccessfulExtractions *int
	StartedAt             *time.Time
	CompletedAt           *time.Time
	ErrorMessage          *string
}

// Store is the persistence boundary the engine writes through. The engine
// assumes nothing about the storage technology, only that writes are
// durable before a terminal status is reported back.
type Store interface {
	SaveJob(ctx context.Context, j domain.Job) error
	UpdateJob(ctx context.Context, jobID string, p JobPatch) error
	SaveLead(ctx context.Context, jobID string, l domain.Lead) (int64, error)
	UpdateLeadStatus(ctx context.Context, leadID int64, s domain.LeadStatus) error
	LoadJobHistory(ctx context.Context) ([]domain.Job, error)
	LeadsByJob(ctx context.Context, jobID string) ([]domain.Lead, error)
}

func patchStatus(s domain.JobStatus) *domain.JobStatus { return &s }
func patchInt(n int) *int                              { return &n }
func patchTime(t time.Time) *time.Time                 { return &t }
func patchString(s string) *string                     { return &s }
