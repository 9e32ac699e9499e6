package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"job-autopilot/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionRequest struct {
	APIKey string `json:"api_key"`
}

// sessionHandler exchanges the static API key for a short-lived session token.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		s.log.Error().Msg("operator API key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.APIKey != s.apiKey {
		s.auditAuth(r, model.VerdictRejected, "session denied: invalid api key")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	s.auditAuth(r, model.VerdictAccepted, "operator session minted")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// auditAuth leaves an AUTH trail entry for every key exchange, granted or not.
func (s *Server) auditAuth(r *http.Request, verdict model.Verdict, details string) {
	s.sink.Log(r.Context(), &model.AuditRecord{
		ID:        ulid.Make().String(),
		Action:    model.ActionAuth,
		Verdict:   verdict,
		Details:   details,
		Metadata:  map[string]string{"remote_addr": r.RemoteAddr},
		CreatedAt: time.Now(),
	})
}

func (s *Server) queueStatusHandler(w http.ResponseWriter, r *http.Request) {
	st := s.queue.Status()
	writeJSON(w, http.StatusOK, struct {
		IsRunning           bool   `json:"is_running"`
		IsPaused            bool   `json:"is_paused"`
		PauseReason         string `json:"pause_reason,omitempty"`
		ConsecutiveFailures int    `json:"consecutive_failures"`
		LastActivityAt      string `json:"last_activity_at,omitempty"`
	}{
		IsRunning:           st.IsRunning,
		IsPaused:            st.IsPaused,
		PauseReason:         st.PauseReason,
		ConsecutiveFailures: st.ConsecutiveFailures,
		LastActivityAt:      formatTime(st),
	})
}

func formatTime(st model.RunStatus) string {
	if st.LastActivityAt.IsZero() {
		return ""
	}
	return st.LastActivityAt.UTC().Format("2006-01-02T15:04:05Z07:00")
}

type processRequest struct {
	Limit  int  `json:"limit"`
	DryRun bool `json:"dry_run"`
}

// queueProcessHandler starts a run in the background. The status endpoint is
// the source of truth for progress; a busy or paused queue answers 409.
func (s *Server) queueProcessHandler(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	st := s.queue.Status()
	if st.IsRunning {
		http.Error(w, "queue run already in progress", http.StatusConflict)
		return
	}
	if st.IsPaused {
		http.Error(w, "queue is paused: "+st.PauseReason, http.StatusConflict)
		return
	}

	go func() {
		// The run outlives the request, so it gets a fresh context.
		report, err := s.queue.ProcessQueue(context.Background(), req.Limit, req.DryRun)
		if err != nil {
			s.log.Error().Err(err).Msg("queue run failed")
			return
		}
		s.log.Info().
			Int("processed", report.Processed).
			Int("submitted", report.Submitted).
			Bool("paused", report.Paused).
			Msg("queue run finished")
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type pauseRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) queuePauseHandler(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	s.queue.Pause(req.Reason)
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) queueResumeHandler(w http.ResponseWriter, r *http.Request) {
	s.queue.Resume()
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (s *Server) queueStopHandler(w http.ResponseWriter, r *http.Request) {
	s.queue.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) auditRecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := s.audit.ListRecent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("audit list failed")
		http.Error(w, "Failed to list audit records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, auditResponse(records))
}

func (s *Server) auditByJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	records, err := s.audit.ListByJob(r.Context(), jobID)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("audit trail fetch failed")
		http.Error(w, "Failed to list audit records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, auditResponse(records))
}

type auditRecordJSON struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	JobID     string            `json:"job_id,omitempty"`
	Verdict   string            `json:"verdict"`
	Details   string            `json:"details"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func auditResponse(records []*model.AuditRecord) []auditRecordJSON {
	out := make([]auditRecordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, auditRecordJSON{
			ID:        rec.ID,
			Action:    string(rec.Action),
			JobID:     rec.JobID,
			Verdict:   string(rec.Verdict),
			Details:   rec.Details,
			Metadata:  rec.Metadata,
			CreatedAt: rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}

func (s *Server) profileGetHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = model.DefaultProfileID
	}
	profile, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("profile fetch failed")
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) profilePutHandler(w http.ResponseWriter, r *http.Request) {
	var profile model.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.profiles.SaveProfile(r.Context(), &profile); err != nil {
		s.log.Error().Err(err).Msg("profile save failed")
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	s.sink.Log(r.Context(), &model.AuditRecord{
		ID:        ulid.Make().String(),
		Action:    model.ActionProfileUpdate,
		Verdict:   model.VerdictAccepted,
		Details:   fmt.Sprintf("profile %s updated with %d resume variants", profile.ID, len(profile.Resumes)),
		Metadata:  map[string]string{"user_id": profile.ID},
		CreatedAt: time.Now(),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) ingestRunHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.ingest.RunCycle(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("manual ingest failed")
		http.Error(w, "Ingest cycle failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Targets  int `json:"targets"`
		Found    int `json:"found"`
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
	}{report.Targets, report.Found, report.Inserted, report.Updated})
}

func (s *Server) ingestUnhealthyHandler(w http.ResponseWriter, r *http.Request) {
	threshold := 3
	if v := r.URL.Query().Get("threshold"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threshold = n
		}
	}
	targets := s.ingest.UnhealthyTargets(threshold)
	writeJSON(w, http.StatusOK, map[string][]string{"unhealthy": targets})
}
