package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/extract/types"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Pipeline is what a worker pulls batches from. Implemented by
// extract.Pipeline; faked in tests.
type Pipeline interface {
	Next(ctx context.Context) (types.Page, bool, error)
}

// PipelineFactory builds the pipeline for one job. An unknown source must
// come back wrapping extract.ErrUnknownSource so StartJob can reject it
// synchronously.
type PipelineFactory func(source string, q types.Query) (Pipeline, error)

type StartRequest struct {
	SearchTerm   string
	BusinessType string
	Location     string
	Source       string
	MaxLeads     int
}

// Snapshot is a point-in-time copy of a job, safe to hand to callers
// while the worker keeps mutating the live record.
type Snapshot struct {
	domain.Job
	Progress int `json:"progress"`
}

type jobState struct {
	mu     sync.Mutex
	job    domain.Job
	cancel atomic.Bool
}

func (st *jobState) snapshot() Snapshot {
	st.mu.Lock()
	j := st.job
	st.mu.Unlock()
	return Snapshot{Job: j, Progress: j.Progress()}
}

// Registry is the process-wide job table, owned by whoever constructs the
// Manager. Injecting it (instead of package-level state) keeps tests
// isolated.
type Registry struct {
	mu    sync.Mutex
	byID  map[string]*jobState
	order []string // creation order
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*jobState)}
}

func (r *Registry) add(st *jobState) {
	r.mu.Lock()
	r.byID[st.job.JobID] = st
	r.order = append(r.order, st.job.JobID)
	r.mu.Unlock()
}

func (r *Registry) get(id string) (*jobState, bool) {
	r.mu.Lock()
	st, ok := r.byID[id]
	r.mu.Unlock()
	return st, ok
}

func (r *Registry) newestFirst() []*jobState {
	r.mu.Lock()
	out := make([]*jobState, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.byID[r.order[i]])
	}
	r.mu.Unlock()
	return out
}

type Options struct {
	// MaxWorkers caps concurrently running jobs; excess StartJob calls
	// queue in pending until a slot frees. 0 means unlimited.
	MaxWorkers int64

	// DefaultMaxLeads applies when a request leaves MaxLeads unset.
	DefaultMaxLeads int

	// DefaultSource applies when a request leaves Source unset.
	DefaultSource string

	// OnEvent, when set, receives job lifecycle notifications
	// (job_started, job_finished, lead_found) for the SSE hub.
	OnEvent func(typ string, data map[string]any)
}

// Manager owns the job table: it creates jobs, spawns one worker per
// running job, answers status queries and services cancellation.
type Manager struct {
	reg         *Registry
	store       Store
	newPipeline PipelineFactory
	sem         *semaphore.Weighted
	opts        Options

	wg sync.WaitGroup // running workers, for clean shutdown in tests
}

func NewManager(reg *Registry, store Store, factory PipelineFactory, opts Options) *Manager {
	if opts.DefaultMaxLeads <= 0 {
		opts.DefaultMaxLeads = 50
	}
	m := &Manager{reg: reg, store: store, newPipeline: factory, opts: opts}
	if opts.MaxWorkers > 0 {
		m.sem = semaphore.NewWeighted(opts.MaxWorkers)
	}
	return m
}

// StartJob validates the request, persists a pending job and schedules a
// worker. It returns as soon as the record exists; the pending→running
// transition happens on the worker goroutine.
func (m *Manager) StartJob(ctx context.Context, req StartRequest) (Snapshot, error) {
	req.SearchTerm = strings.TrimSpace(req.SearchTerm)
	req.Location = strings.TrimSpace(req.Location)
	if req.SearchTerm == "" {
		return Snapshot{}, fmt.Errorf("%w: search_term is required", ErrInvalidInput)
	}
	if req.Location == "" {
		return Snapshot{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if req.MaxLeads <= 0 {
		req.MaxLeads = m.opts.DefaultMaxLeads
	}
	if req.Source == "" {
		req.Source = m.opts.DefaultSource
	}

	q := types.Query{
		SearchTerm:   req.SearchTerm,
		BusinessType: req.BusinessType,
		Location:     req.Location,
	}
	pipe, err := m.newPipeline(req.Source, q)
	if err != nil {
		// Unknown source is a caller mistake, not an engine failure.
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	job := domain.Job{
		JobID:        uuid.NewString(),
		SearchTerm:   req.SearchTerm,
		BusinessType: req.BusinessType,
		Location:     req.Location,
		Source:       req.Source,
		MaxLeads:     req.MaxLeads,
		Status:       domain.JobPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.store.SaveJob(ctx, job); err != nil {
		return Snapshot{}, fmt.Errorf("save job: %w", err)
	}

	st := &jobState{job: job}
	m.reg.add(st)
	log.Printf("[jobs] created job_id=%s term=%q location=%q source=%s max_leads=%d",
		job.JobID, job.SearchTerm, job.Location, job.Source, job.MaxLeads)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(st, pipe, q)
	}()

	return st.snapshot(), nil
}

func (m *Manager) run(st *jobState, pipe Pipeline, q types.Query) {
	// Workers outlive the StartJob request; they carry their own context.
	ctx := context.Background()

	if m.sem != nil {
		_ = m.sem.Acquire(ctx, 1)
		defer m.sem.Release(1)
	}

	// Cancelled while still queued: never ran, finalize directly.
	if st.cancel.Load() {
		m.finalize(ctx, st, domain.JobCancelled, "")
		return
	}

	now := time.Now().UTC()
	st.mu.Lock()
	st.job.Status = domain.JobRunning
	st.job.StartedAt = &now
	jobID := st.job.JobID
	st.mu.Unlock()

	if err := m.store.UpdateJob(ctx, jobID, JobPatch{
		Status:    patchStatus(domain.JobRunning),
		StartedAt: patchTime(now),
	}); err != nil {
		log.Printf("[jobs] persist running job_id=%s err=%v", jobID, err)
	}
	m.emit("job_started", map[string]any{"job_id": jobID})

	w := &worker{mgr: m, st: st, pipe: pipe, q: q}
	w.run(ctx)
}

// GetStatus returns a copy of the job's current fields.
func (m *Manager) GetStatus(jobID string) (Snapshot, error) {
	st, ok := m.reg.get(jobID)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return st.snapshot(), nil
}

// ListJobs returns snapshots ordered by creation time, most recent first.
func (m *Manager) ListJobs() []Snapshot {
	states := m.reg.newestFirst()
	out := make([]Snapshot, 0, len(states))
	for _, st := range states {
		out = append(out, st.snapshot())
	}
	return out
}

// CancelJob requests cooperative cancellation. Idempotent: a job already
// in a terminal state succeeds as a no-op. The worker observes the flag
// at its next loop boundary; in-flight network calls run to their timeout.
func (m *Manager) CancelJob(jobID string) (bool, error) {
	st, ok := m.reg.get(jobID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	st.mu.Lock()
	terminal := st.job.Status.Terminal()
	st.mu.Unlock()
	if terminal {
		return true, nil
	}
	st.cancel.Store(true)
	log.Printf("[jobs] cancel requested job_id=%s", jobID)
	return true, nil
}

// Leads returns the persisted leads for one job.
func (m *Manager) Leads(ctx context.Context, jobID string) ([]domain.Lead, error) {
	if _, ok := m.reg.get(jobID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return m.store.LeadsByJob(ctx, jobID)
}

// Wait blocks until every spawned worker has finalized. Test hook.
func (m *Manager) Wait() { m.wg.Wait() }

func (m *Manager) emit(typ string, data map[string]any) {
	if m.opts.OnEvent != nil {
		m.opts.OnEvent(typ, data)
	}
}

func (m *Manager) finalize(ctx context.Context, st *jobState, status domain.JobStatus, errMsg string) {
	now := time.Now().UTC()

	st.mu.Lock()
	if st.job.Status.Terminal() {
		st.mu.Unlock()
		return
	}
	st.job.Status = status
	st.job.CompletedAt = &now
	st.job.ErrorMessage = errMsg
	jobID := st.job.JobID
	total := st.job.TotalListings
	success := st.job.SuccessfulExtractions
	st.mu.Unlock()

	patch := JobPatch{
		Status:                patchStatus(status),
		CompletedAt:           patchTime(now),
		TotalListings:         patchInt(total),
		SuccessfulExtractions: patchInt(success),
	}
	if errMsg != "" {
		patch.ErrorMessage = patchString(errMsg)
	}
	if err := m.store.UpdateJob(ctx, jobID, patch); err != nil {
		log.Printf("[jobs] persist terminal job_id=%s status=%s err=%v", jobID, status, err)
	}

	log.Printf("[jobs] finished job_id=%s status=%s total=%d extracted=%d", jobID, status, total, success)
	m.emit("job_finished", map[string]any{
		"job_id": jobID,
		"status": string(status),
	})
}
