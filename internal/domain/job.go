package domain

import "time"

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transitions can leave this status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

type Job struct {
	JobID                 string     `json:"job_id"`
	SearchTerm            string     `json:"search_term"`
	BusinessType          string     `json:"business_type"`
	Location              string     `json:"location"`
	Source                string     `json:"source"`
	MaxLeads              int        `json:"max_leads"`
	Status                JobStatus  `json:"status"`
	TotalListings         int        `json:"total_listings"`
	SuccessfulExtractions int        `json:"successful_extractions"`
	CreatedAt             time.Time  `json:"created_at"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
}

// Progress returns a 0..100 percentage for pollers. total_listings is 0
// until the first page lands, so fall back to max_leads before that.
func (j Job) Progress() int {
	if j.Status == JobCompleted {
		return 100
	}
	den := j.TotalListings
	if den == 0 {
		den = j.MaxLeads
	}
	if den <= 0 {
		return 0
	}
	p := j.SuccessfulExtractions * 100 / den
	if p > 100 {
		p = 100
	}
	return p
}
