package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"leadscout-engine/internal/jobs"
)

type ScrapeHandler struct {
	Manager *jobs.Manager
}

type startScrapeReq struct {
	SearchTerm   string `json:"search_term"`
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
	Source       string `json:"source"`
	MaxLeads     int    `json:"max_leads"`
}

func (h ScrapeHandler) Start(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req startScrapeReq
	if err := dec.Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	snap, err := h.Manager.StartJob(r.Context(), jobs.StartRequest{
		SearchTerm:   req.SearchTerm,
		BusinessType: req.BusinessType,
		Location:     req.Location,
		Source:       req.Source,
		MaxLeads:     req.MaxLeads,
	})
	if err != nil {
		if errors.Is(err, jobs.ErrInvalidInput) {
			WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "start_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, snap)
}

// StatusByPath expects /scrape/status/{job_id}.
func (h ScrapeHandler) StatusByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/scrape/status/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "bad_path", "expected /scrape/status/{job_id}")
		return
	}

	snap, err := h.Manager.GetStatus(id)
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "not_found", "no job with id "+id)
		return
	}
	writeJSON(w, snap)
}

func (h ScrapeHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"jobs": h.Manager.ListJobs()})
}

// JobByPath dispatches /scrape/jobs/{job_id} and /scrape/jobs/{job_id}/leads.
func (h ScrapeHandler) JobByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/scrape/jobs/")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(rest, "/leads"):
		h.leads(w, r, strings.TrimSuffix(rest, "/leads"))
	case r.Method == http.MethodDelete && !strings.Contains(rest, "/"):
		h.cancel(w, r, rest)
	default:
		WriteError(w, r, http.StatusBadRequest, "bad_path",
			"expected GET /scrape/jobs/{job_id}/leads or DELETE /scrape/jobs/{job_id}")
	}
}

func (h ScrapeHandler) leads(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "bad_path", "expected /scrape/jobs/{job_id}/leads")
		return
	}

	leads, err := h.Manager.Leads(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "no job with id "+id)
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "leads_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"job_id": id, "count": len(leads), "leads": leads})
}

func (h ScrapeHandler) cancel(w http.ResponseWriter, r *http.Request, id string) {
	alreadyDone, err := h.Manager.CancelJob(id)
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "not_found", "no job with id "+id)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "already_terminal": alreadyDone})
}
