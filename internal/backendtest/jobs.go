package backendtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("q"))
	location := strings.ToLower(q.Get("location"))
	var tags []string
	if raw := q.Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}
	var remote *bool
	if raw := q.Get("remote"); raw != "" {
		v := raw == "true"
		remote = &v
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	s.mu.Lock()
	var matched []*jobRecord
	for _, id := range s.jobOrder {
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}
		if remote != nil && j.Remote != *remote {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(j.Tags, tags) {
			continue
		}
		matched = append(matched, j)
	}
	s.mu.Unlock()

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	jobs := make([]*jobRecord, 0, end-start)
	jobs = append(jobs, matched[start:end]...)

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":       jobs,
		"page":       page,
		"pageSize":   pageSize,
		"totalCount": total,
	})
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	j, ok := s.jobs[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request, a *account) {
	if a.Role != "ngo" {
		writeError(w, http.StatusForbidden, "wrong_role", "only organizations create listings")
		return
	}

	var body jobRecord
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation", "title is required")
		return
	}

	body.ID = uuid.NewString()
	body.NGOID = a.ID
	body.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	s.jobs[body.ID] = &body
	s.jobOrder = append(s.jobOrder, body.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, &body)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request, a *account) {
	s.mu.Lock()
	j, ok := s.jobs[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if j.NGOID != a.ID {
		writeError(w, http.StatusForbidden, "not_owner", "listing belongs to another organization")
		return
	}

	var body struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Location    *string  `json:"location"`
		Tags        []string `json:"tags"`
		Remote      *bool    `json:"remote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	s.mu.Lock()
	if body.Title != nil {
		j.Title = *body.Title
	}
	if body.Description != nil {
		j.Description = *body.Description
	}
	if body.Location != nil {
		j.Location = *body.Location
	}
	if body.Tags != nil {
		j.Tags = body.Tags
	}
	if body.Remote != nil {
		j.Remote = *body.Remote
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, j)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, a *account) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	j, ok := s.jobs[id]
	if ok && j.NGOID == a.ID {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if j.NGOID != a.ID {
		writeError(w, http.StatusForbidden, "not_owner", "listing belongs to another organization")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request, a *account) {
	if a.Role != "volunteer" {
		writeError(w, http.StatusForbidden, "wrong_role", "only volunteers apply to listings")
		return
	}

	jobID := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	app := &appRecord{
		ID:        uuid.NewString(),
		JobID:     jobID,
		UserID:    a.ID,
		Message:   body.Message,
		Status:    "pending",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.apps[app.ID] = app
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.Lock()
	out := make([]*appRecord, 0)
	for _, app := range s.apps {
		switch a.Role {
		case "volunteer":
			if app.UserID == a.ID {
				out = append(out, app)
			}
		case "ngo":
			if j, ok := s.jobs[app.JobID]; ok && j.NGOID == a.ID {
				out = append(out, app)
			}
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleApplicationStatus(w http.ResponseWriter, r *http.Request, a *account) {
	s.mu.Lock()
	app, ok := s.apps[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "application not found")
		return
	}

	s.mu.Lock()
	j, jobOK := s.jobs[app.JobID]
	s.mu.Unlock()
	if !jobOK || j.NGOID != a.ID {
		writeError(w, http.StatusForbidden, "not_owner", "application belongs to another organization's listing")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	switch body.Status {
	case "pending", "accepted", "rejected":
	default:
		writeError(w, http.StatusUnprocessableEntity, "validation", "unknown status")
		return
	}

	s.mu.Lock()
	app.Status = body.Status
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, app)
}
