package jobs

import (
	"context"
	"log"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/extract"
	"leadscout-engine/internal/extract/types"
)

// worker drives one job to its terminal state. It is the only goroutine
// that mutates the job's counters; cancellation arrives through the
// cooperative flag, checked once per loop iteration.
type worker struct {
	mgr  *Manager
	st   *jobState
	pipe Pipeline
	q    types.Query
}

func (w *worker) run(ctx context.Context) {
	m := w.mgr
	st := w.st

	st.mu.Lock()
	jobID := st.job.JobID
	maxLeads := st.job.MaxLeads
	st.mu.Unlock()

	for {
		if st.cancel.Load() {
			m.finalize(ctx, st, domain.JobCancelled, "")
			return
		}

		page, more, err := w.pipe.Next(ctx)
		if err != nil {
			// Only pipeline-wide conditions reach here: pool exhausted or
			// markup the parser cannot read. Message kept verbatim.
			m.finalize(ctx, st, domain.JobFailed, err.Error())
			return
		}

		total, success := w.processBatch(ctx, jobID, maxLeads, page.Listings)

		if err := m.store.UpdateJob(ctx, jobID, JobPatch{
			TotalListings:         patchInt(total),
			SuccessfulExtractions: patchInt(success),
		}); err != nil {
			log.Printf("[worker] persist counters job_id=%s err=%v", jobID, err)
		}

		if success >= maxLeads || !more {
			m.finalize(ctx, st, domain.JobCompleted, "")
			return
		}
	}
}

// processBatch normalizes and persists one page of listings and returns
// the updated counters. Listings that fail to parse still count toward
// total_listings; they are dropped, not retried.
func (w *worker) processBatch(ctx context.Context, jobID string, maxLeads int, listings []types.Listing) (total, success int) {
	m := w.mgr
	st := w.st

	st.mu.Lock()
	total = st.job.TotalListings
	success = st.job.SuccessfulExtractions
	st.mu.Unlock()

	for _, raw := range listings {
		if success >= maxLeads {
			break
		}
		total++

		lead, ok := extract.NormalizeListing(raw, w.q, jobID)
		if !ok {
			continue
		}

		id, err := m.store.SaveLead(ctx, jobID, lead)
		if err != nil {
			log.Printf("[worker] save lead job_id=%s name=%q err=%v", jobID, lead.Name, err)
			continue
		}
		success++

		if status := extract.ValidateLead(lead); status != lead.Status {
			if err := m.store.UpdateLeadStatus(ctx, id, status); err != nil {
				log.Printf("[worker] lead status job_id=%s lead=%d err=%v", jobID, id, err)
			}
		}

		m.emit("lead_found", map[string]any{
			"job_id": jobID,
			"name":   lead.Name,
		})
	}

	// Counters are monotonic: the worker is the sole writer, readers get
	// copies under the same lock.
	st.mu.Lock()
	st.job.TotalListings = total
	st.job.SuccessfulExtractions = success
	st.mu.Unlock()

	return total, success
}
