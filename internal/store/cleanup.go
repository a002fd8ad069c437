package store

import (
	"context"
	"fmt"
)

// CleanupOldJobs deletes terminal jobs (and their leads) older than the
// retention window. Active jobs are never touched.
func (s *SQLStore) CleanupOldJobs(ctx context.Context, retentionDays int) (deleted int64, err error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := fmt.Sprintf("-%d days", retentionDays)

	if _, err := s.DB.ExecContext(ctx, `
DELETE FROM leads
WHERE job_id IN (
  SELECT job_id FROM scraping_jobs
  WHERE status IN ('completed', 'failed', 'cancelled')
    AND created_at < datetime('now', ?)
);`, cutoff); err != nil {
		return 0, fmt.Errorf("cleanup old leads: %w", err)
	}

	res, err := s.DB.ExecContext(ctx, `
DELETE FROM scraping_jobs
WHERE status IN ('completed', 'failed', 'cancelled')
  AND created_at < datetime('now', ?);`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
