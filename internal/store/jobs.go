package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/jobs"
)

// SQLStore implements jobs.Store on sqlite.
type SQLStore struct {
	DB *sql.DB
}

var _ jobs.Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

func (s *SQLStore) SaveJob(ctx context.Context, j domain.Job) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO scraping_jobs
  (job_id, search_term, business_type, location, source, max_leads, status,
   total_listings, successful_extractions, created_at, started_at, completed_at, error_message)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		j.JobID, j.SearchTerm, j.BusinessType, j.Location, j.Source, j.MaxLeads, string(j.Status),
		j.TotalListings, j.SuccessfulExtractions,
		fmtTime(j.CreatedAt), fmtTimePtr(j.StartedAt), fmtTimePtr(j.CompletedAt), nullStr(j.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateJob(ctx context.Context, jobID string, p jobs.JobPatch) error {
	var sets []string
	var args []any

	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.TotalListings != nil {
		sets = append(sets, "total_listings = ?")
		args = append(args, *p.TotalListings)
	}
	if p.SuccessfulExtractions != nil {
		sets = append(sets, "successful_extractions = ?")
		args = append(args, *p.SuccessfulExtractions)
	}
	if p.StartedAt != nil {
		sets = append(sets, "started_at = ?")
		args = append(args, fmtTime(*p.StartedAt))
	}
	if p.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, fmtTime(*p.CompletedAt))
	}
	if p.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *p.ErrorMessage)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, jobID)

	res, err := s.DB.ExecContext(ctx,
		`UPDATE scraping_jobs SET `+strings.Join(sets, ", ")+` WHERE job_id = ?;`, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update job: job_id %q not found", jobID)
	}
	return nil
}

func (s *SQLStore) LoadJobHistory(ctx context.Context) ([]domain.Job, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT job_id, search_term, business_type, location, source, max_leads, status,
       total_listings, successful_extractions, created_at, started_at, completed_at, error_message
FROM scraping_jobs
ORDER BY created_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		var j domain.Job
		var status, createdAt string
		var startedAt, completedAt, errMsg sql.NullString
		if err := rows.Scan(
			&j.JobID, &j.SearchTerm, &j.BusinessType, &j.Location, &j.Source, &j.MaxLeads, &status,
			&j.TotalListings, &j.SuccessfulExtractions, &createdAt, &startedAt, &completedAt, &errMsg,
		); err != nil {
			return nil, err
		}
		j.Status = domain.JobStatus(status)
		j.CreatedAt = parseTime(createdAt)
		j.StartedAt = parseTimePtr(startedAt)
		j.CompletedAt = parseTimePtr(completedAt)
		j.ErrorMessage = errMsg.String
		out = append(out, j)
	}
	return out, rows.Err()
}

// ReconcileInterrupted fails jobs that a previous process left pending or
// running: after a restart there is no worker behind them.
func (s *SQLStore) ReconcileInterrupted(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
UPDATE scraping_jobs
SET status = 'failed',
    completed_at = ?,
    error_message = 'interrupted by engine restart'
WHERE status IN ('pending', 'running');`, fmtTime(time.Now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("reconcile interrupted jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
