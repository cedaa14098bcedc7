// Package backendtest runs an in-memory VolunteerHub API double for client
// tests: JWT-minting auth endpoints, a seeded job board, and knobs for
// forcing token expiry and slowing or failing refresh.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	signingSecret     = "backendtest-signing-secret"
	refreshCookieName = "refresh_token"
)

type account struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}

// Server is the API double. All knobs are safe for concurrent use.
type Server struct {
	HTTP *httptest.Server

	accessTTL time.Duration

	mu       sync.Mutex
	accounts map[string]*account // keyed by email
	refresh  map[string]string   // refresh token -> account email
	jobs     map[string]*jobRecord
	apps     map[string]*appRecord
	jobOrder []string

	// tokenGen invalidates every outstanding access token when bumped.
	tokenGen     atomic.Int64
	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
	refreshDelay atomic.Int64 // nanoseconds
	force401     atomic.Int64
}

type jobRecord struct {
	ID          string   `json:"id"`
	NGOID       string   `json:"ngoId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags,omitempty"`
	Remote      bool     `json:"remote"`
	CreatedAt   string   `json:"createdAt"`
}

type appRecord struct {
	ID        string `json:"id"`
	JobID     string `json:"jobId"`
	UserID    string `json:"userId"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// New starts the double with a default volunteer and NGO account seeded.
func New() *Server {
	s := &Server{
		accessTTL: time.Minute,
		accounts:  make(map[string]*account),
		refresh:   make(map[string]string),
		jobs:      make(map[string]*jobRecord),
		apps:      make(map[string]*appRecord),
	}

	s.Seed("vol-1", "Ada Volunteer", "ada@example.org", "hunter22", "volunteer")
	s.Seed("ngo-1", "Beach Cleanup Org", "org@example.org", "hunter22", "ngo")

	r := chi.NewRouter()
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/refresh", s.handleRefresh)
	r.Post("/api/auth/logout", s.handleLogout)
	r.Post("/api/auth/register/volunteer", s.handleRegister("volunteer"))
	r.Post("/api/auth/register/ngo", s.handleRegister("ngo"))
	r.Get("/api/auth/me", s.authed(s.handleMe))
	r.Patch("/api/users/me", s.authed(s.handleProfile))

	r.Get("/api/jobs", s.handleListJobs)
	r.Post("/api/jobs", s.authed(s.handleCreateJob))
	r.Get("/api/jobs/{id}", s.handleGetJob)
	r.Patch("/api/jobs/{id}", s.authed(s.handleUpdateJob))
	r.Delete("/api/jobs/{id}", s.authed(s.handleDeleteJob))
	r.Post("/api/jobs/{id}/apply", s.authed(s.handleApply))
	r.Get("/api/applications", s.authed(s.handleMyApplications))
	r.Patch("/api/applications/{id}", s.authed(s.handleApplicationStatus))

	s.HTTP = httptest.NewServer(r)
	return s
}

// Close shuts the double down.
func (s *Server) Close() {
	s.HTTP.Close()
}

// URL is the base URL clients should point at.
func (s *Server) URL() string {
	return s.HTTP.URL
}

// Seed registers an account directly, bypassing the register endpoints.
func (s *Server) Seed(id, name, email, password, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{ID: id, Name: name, Email: email, Password: password, Role: role}
}

// SeedJob inserts a listing and returns its id.
func (s *Server) SeedJob(ngoID, title, location string, remote bool, tags ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.jobs[id] = &jobRecord{
		ID:        id,
		NGOID:     ngoID,
		Title:     title,
		Location:  location,
		Remote:    remote,
		Tags:      tags,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.jobOrder = append(s.jobOrder, id)
	return id
}

// ExpireAccessTokens invalidates every access token minted so far. The next
// authenticated call observes a 401 exactly as if the token TTL elapsed.
func (s *Server) ExpireAccessTokens() {
	s.tokenGen.Add(1)
}

// RefreshCalls reports how many refresh round trips the double has served.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// FailRefresh makes subsequent refresh calls answer 401.
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// SetRefreshDelay holds each refresh call for d before answering, so tests
// can pile concurrent requests onto one in-flight cycle.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.refreshDelay.Store(int64(d))
}

// ForceUnauthorized makes the next n authenticated calls answer 401 no
// matter how fresh their token is.
func (s *Server) ForceUnauthorized(n int64) {
	s.force401.Store(n)
}

/*
====================================
TOKENS
====================================
*/

func (s *Server) mintAccess(a *account) string {
	claims := jwt.MapClaims{
		"sub":   a.ID,
		"name":  a.Name,
		"email": a.Email,
		"role":  a.Role,
		"gen":   s.tokenGen.Load(),
		"exp":   time.Now().Add(s.accessTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(signingSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) verifyAccess(tokenString string) (*account, bool) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(signingSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	gen, _ := claims["gen"].(float64)
	if int64(gen) != s.tokenGen.Load() {
		return nil, false
	}
	email, _ := claims["email"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.accounts[email]
	return a, found
}

func (s *Server) issueRefresh(w http.ResponseWriter, a *account) {
	token := uuid.NewString()
	s.mu.Lock()
	s.refresh[token] = a.Email
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

/*
====================================
HANDLERS
====================================
*/

func (s *Server) authed(next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if n := s.force401.Load(); n > 0 && s.force401.CompareAndSwap(n, n-1) {
			writeError(w, http.StatusUnauthorized, "forced", "scripted 401")
			return
		}

		const bearer = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(bearer) || header[:len(bearer)] != bearer {
			writeError(w, http.StatusUnauthorized, "missing_token", "authorization required")
			return
		}
		a, ok := s.verifyAccess(header[len(bearer):])
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_token", "token expired or invalid")
			return
		}
		next(w, r, a)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[body.Email]
	s.mu.Unlock()
	if !ok || a.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or password incorrect")
		return
	}

	s.issueRefresh(w, a)
	writeAuth(w, s.mintAccess(a), a)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	if d := time.Duration(s.refreshDelay.Load()); d > 0 {
		time.Sleep(d)
	}
	if s.failRefresh.Load() {
		writeError(w, http.StatusUnauthorized, "refresh_rejected", "refresh token revoked")
		return
	}

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "missing_refresh", "no refresh token")
		return
	}

	s.mu.Lock()
	email, ok := s.refresh[cookie.Value]
	var a *account
	if ok {
		delete(s.refresh, cookie.Value)
		a = s.accounts[email]
	}
	s.mu.Unlock()
	if a == nil {
		writeError(w, http.StatusUnauthorized, "invalid_refresh", "refresh token unknown")
		return
	}

	s.issueRefresh(w, a)
	writeAuth(w, s.mintAccess(a), a)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		s.mu.Lock()
		delete(s.refresh, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: refreshCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name             string `json:"name"`
			OrganizationName string `json:"organizationName"`
			Email            string `json:"email"`
			Password         string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
			return
		}
		name := body.Name
		if role == "ngo" {
			name = body.OrganizationName
		}
		if body.Email == "" || body.Password == "" || name == "" {
			writeError(w, http.StatusUnprocessableEntity, "validation", "missing required fields")
			return
		}

		s.mu.Lock()
		if _, exists := s.accounts[body.Email]; exists {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "duplicate_email", "account already exists")
			return
		}
		a := &account{ID: uuid.NewString(), Name: name, Email: body.Email, Password: body.Password, Role: role}
		s.accounts[body.Email] = a
		s.mu.Unlock()

		s.issueRefresh(w, a)
		w.WriteHeader(http.StatusCreated)
		writeAuthBody(w, s.mintAccess(a), a)
	}
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, a *account) {
	writeJSON(w, http.StatusOK, userPayload(a))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, a *account) {
	var body struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed body")
		return
	}
	s.mu.Lock()
	if body.Name != nil {
		a.Name = *body.Name
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, userPayload(a))
}

/*
====================================
PAYLOAD HELPERS
====================================
*/

func userPayload(a *account) map[string]any {
	return map[string]any{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
		"role":  a.Role,
	}
}

func writeAuth(w http.ResponseWriter, token string, a *account) {
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": token,
		"user":        userPayload(a),
	})
}

func writeAuthBody(w http.ResponseWriter, token string, a *account) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"accessToken": token,
		"user":        userPayload(a),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
