package store

import (
	"context"
	"fmt"

	"leadscout-engine/internal/domain"
)

func (s *SQLStore) SaveLead(ctx context.Context, jobID string, l domain.Lead) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
INSERT INTO leads (job_id, name, phone, website, email, location, business_type, scraped_at, status)
VALUES (?,?,?,?,?,?,?,?,?);`,
		jobID, l.Name, l.Phone, l.Website, l.Email, l.Location, l.BusinessType,
		fmtTime(l.ScrapedAt), string(l.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("insert lead: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *SQLStore) UpdateLeadStatus(ctx context.Context, leadID int64, status domain.LeadStatus) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE leads SET status = ? WHERE id = ?;`, string(status), leadID)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

func (s *SQLStore) LeadsByJob(ctx context.Context, jobID string) ([]domain.Lead, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, job_id, name, phone, website, email, location, business_type, scraped_at, status
FROM leads
WHERE job_id = ?
ORDER BY id;`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var l domain.Lead
		var scrapedAt, status string
		if err := rows.Scan(
			&l.ID, &l.JobID, &l.Name, &l.Phone, &l.Website, &l.Email,
			&l.Location, &l.BusinessType, &scrapedAt, &status,
		); err != nil {
			return nil, err
		}
		l.ScrapedAt = parseTime(scrapedAt)
		l.Status = domain.LeadStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}
