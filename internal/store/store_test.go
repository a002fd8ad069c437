package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return NewSQLStore(db.Pool)
}

func sampleJob(id string) domain.Job {
	return domain.Job{
		JobID:      id,
		SearchTerm: "plumber",
		Location:   "Austin, TX",
		Source:     "google_maps",
		MaxLeads:   50,
		Status:     domain.JobPending,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndLoadJob(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveJob(ctx, sampleJob("job-1")))

	hist, err := s.LoadJobHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	got := hist[0]
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, "plumber", got.SearchTerm)
	assert.Equal(t, domain.JobPending, got.Status)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdateJobPartialPatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveJob(ctx, sampleJob("job-1")))

	started := time.Now().UTC().Truncate(time.Second)
	running := domain.JobRunning
	require.NoError(t, s.UpdateJob(ctx, "job-1", jobs.JobPatch{
		Status:    &running,
		StartedAt: &started,
	}))

	total := 30
	require.NoError(t, s.UpdateJob(ctx, "job-1", jobs.JobPatch{TotalListings: &total}))

	hist, err := s.LoadJobHistory(ctx)
	require.NoError(t, err)
	got := hist[0]
	assert.Equal(t, domain.JobRunning, got.Status, "later patch must not clobber status")
	assert.Equal(t, 30, got.TotalListings)
	require.NotNil(t, got.StartedAt)
	assert.True(t, started.Equal(*got.StartedAt), "want %v got %v", started, got.StartedAt)
}

func TestUpdateJobUnknownID(t *testing.T) {
	s := openTestStore(t)
	total := 1
	err := s.UpdateJob(context.Background(), "ghost", jobs.JobPatch{TotalListings: &total})
	assert.Error(t, err)
}

func TestLeadsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveJob(ctx, sampleJob("job-1")))

	id1, err := s.SaveLead(ctx, "job-1", domain.Lead{
		Name: "Ace Plumbing", Phone: "5125550100",
		ScrapedAt: time.Now().UTC(), Status: domain.LeadNew,
	})
	require.NoError(t, err)
	_, err = s.SaveLead(ctx, "job-1", domain.Lead{
		Name: "Budget Rooter", Email: "info@budget.com",
		ScrapedAt: time.Now().UTC(), Status: domain.LeadNew,
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateLeadStatus(ctx, id1, domain.LeadValidated))

	leads, err := s.LeadsByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Ace Plumbing", leads[0].Name)
	assert.Equal(t, domain.LeadValidated, leads[0].Status)
	assert.Equal(t, domain.LeadNew, leads[1].Status)

	none, err := s.LeadsByJob(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReconcileInterrupted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pendingJob := sampleJob("job-pending")
	require.NoError(t, s.SaveJob(ctx, pendingJob))

	runningJob := sampleJob("job-running")
	runningJob.Status = domain.JobRunning
	require.NoError(t, s.SaveJob(ctx, runningJob))

	doneJob := sampleJob("job-done")
	doneJob.Status = domain.JobCompleted
	require.NoError(t, s.SaveJob(ctx, doneJob))

	n, err := s.ReconcileInterrupted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	hist, err := s.LoadJobHistory(ctx)
	require.NoError(t, err)
	statuses := map[string]domain.Job{}
	for _, j := range hist {
		statuses[j.JobID] = j
	}
	assert.Equal(t, domain.JobFailed, statuses["job-pending"].Status)
	assert.Equal(t, "interrupted by engine restart", statuses["job-pending"].ErrorMessage)
	assert.Equal(t, domain.JobFailed, statuses["job-running"].Status)
	assert.Equal(t, domain.JobCompleted, statuses["job-done"].Status)
}

func TestLoadStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	j1 := sampleJob("job-1")
	j1.Status = domain.JobCompleted
	require.NoError(t, s.SaveJob(ctx, j1))
	j2 := sampleJob("job-2")
	j2.Status = domain.JobFailed
	require.NoError(t, s.SaveJob(ctx, j2))

	_, err := s.SaveLead(ctx, "job-1", domain.Lead{Name: "A", ScrapedAt: time.Now(), Status: domain.LeadValidated})
	require.NoError(t, err)
	_, err = s.SaveLead(ctx, "job-1", domain.Lead{Name: "B", ScrapedAt: time.Now(), Status: domain.LeadNew})
	require.NoError(t, err)

	st, err := s.LoadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.JobsByStatus["completed"])
	assert.Equal(t, 1, st.JobsByStatus["failed"])
	assert.Equal(t, 2, st.TotalLeads)
	assert.Equal(t, 1, st.LeadsByStatus["validated"])
	assert.Equal(t, 1, st.LeadsByStatus["new"])
}

func TestCleanupOldJobs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := sampleJob("job-old")
	old.Status = domain.JobCompleted
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -60)
	require.NoError(t, s.SaveJob(ctx, old))
	_, err := s.SaveLead(ctx, "job-old", domain.Lead{Name: "A", ScrapedAt: old.CreatedAt, Status: domain.LeadNew})
	require.NoError(t, err)

	fresh := sampleJob("job-fresh")
	fresh.Status = domain.JobCompleted
	require.NoError(t, s.SaveJob(ctx, fresh))

	oldRunning := sampleJob("job-old-running")
	oldRunning.Status = domain.JobRunning
	oldRunning.CreatedAt = time.Now().UTC().AddDate(0, 0, -60)
	require.NoError(t, s.SaveJob(ctx, oldRunning))

	n, err := s.CleanupOldJobs(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only old terminal jobs are removed")

	hist, err := s.LoadJobHistory(ctx)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, j := range hist {
		ids[j.JobID] = true
	}
	assert.False(t, ids["job-old"])
	assert.True(t, ids["job-fresh"])
	assert.True(t, ids["job-old-running"], "active jobs survive cleanup regardless of age")

	leads, err := s.LeadsByJob(ctx, "job-old")
	require.NoError(t, err)
	assert.Empty(t, leads)
}
