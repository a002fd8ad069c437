package domain

import "time"

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadValidated LeadStatus = "validated"
	LeadInvalid   LeadStatus = "invalid"
)

// Lead is a normalized, validated contact record derived from one raw
// listing. Immutable after creation except for Status.
type Lead struct {
	ID           int64      `json:"id"`
	JobID        string     `json:"job_id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Website      string     `json:"website,omitempty"`
	Email        string     `json:"email,omitempty"`
	Location     string     `json:"location,omitempty"`
	BusinessType string     `json:"business_type,omitempty"`
	ScrapedAt    time.Time  `json:"scraped_at"`
	Status       LeadStatus `json:"status"`
}
