package store

import "context"

type Stats struct {
	JobsByStatus  map[string]int `json:"jobs_by_status"`
	TotalLeads    int            `json:"total_leads"`
	LeadsByStatus map[string]int `json:"leads_by_status"`
}

// LoadStats aggregates counts for the dashboard surface.
func (s *SQLStore) LoadStats(ctx context.Context) (Stats, error) {
	st := Stats{
		JobsByStatus:  map[string]int{},
		LeadsByStatus: map[string]int{},
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM scraping_jobs GROUP BY status;`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return st, err
		}
		st.JobsByStatus[status] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	rows, err = s.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM leads GROUP BY status;`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return st, err
		}
		st.LeadsByStatus[status] = n
		st.TotalLeads += n
	}
	return st, rows.Err()
}
