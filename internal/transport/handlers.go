package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/matching"
	"github.com/scholarmatch/scholarmatch/internal/prefs"
	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

type matchRequest struct {
	Profile       *scholar.Profile       `json:"profile"`
	Opportunities []*scholar.Opportunity `json:"opportunities"`
	TopN          *int                   `json:"top_n,omitempty"`
}

type matchResponse struct {
	ProfileID      string                 `json:"profile_id"`
	Matches        []*scholar.MatchResult `json:"matches"`
	ProcessingTime float64                `json:"processing_time"`
	Timestamp      string                 `json:"timestamp"`
}

// preferencesInput carries a preference upsert. Absent fields take the
// documented defaults, so a partial update is really a full replace built
// on top of them.
type preferencesInput struct {
	Email             *string  `json:"email,omitempty"`
	AlertLeadDays     *int     `json:"alert_lead_days,omitempty"`
	MinMatchScore     *float64 `json:"min_match_score,omitempty"`
	EmailEnabled      *bool    `json:"email_enabled,omitempty"`
	PushEnabled       *bool    `json:"push_enabled,omitempty"`
	DeadlineReminders *bool    `json:"deadline_reminders,omitempty"`
	MatchNotification *bool    `json:"match_notifications,omitempty"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type notifyMatchRequest struct {
	UserID          string   `json:"user_id"`
	OpportunityID   string   `json:"opportunity_id"`
	OpportunityName string   `json:"opportunity_name,omitempty"`
	Score           float64  `json:"score"`
	Benefits        []string `json:"benefits,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Profile == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "profile is required"})
		return
	}

	topN := matching.DefaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	start := time.Now()
	matches, err := matching.Rank(req.Profile, req.Opportunities, topN)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scholar.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("scored and ranked opportunities",
		zap.String("profile_id", req.Profile.ID),
		zap.Int("opportunities", len(req.Opportunities)),
		zap.Int("matches", len(matches)),
	)

	writeJSON(w, http.StatusOK, matchResponse{
		ProfileID:      req.Profile.ID,
		Matches:        matches,
		ProcessingTime: time.Since(start).Seconds(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUpsertPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user id is required"})
		return
	}

	var input preferencesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	p := prefs.Defaults(userID)
	if input.Email != nil {
		p.Email = *input.Email
	}
	if input.AlertLeadDays != nil {
		p.AlertLeadDays = *input.AlertLeadDays
	}
	if input.MinMatchScore != nil {
		p.MinMatchScore = *input.MinMatchScore
	}
	if input.EmailEnabled != nil {
		p.EmailEnabled = *input.EmailEnabled
	}
	if input.PushEnabled != nil {
		p.PushEnabled = *input.PushEnabled
	}
	if input.DeadlineReminders != nil {
		p.DeadlineReminders = *input.DeadlineReminders
	}
	if input.MatchNotification != nil {
		p.MatchNotification = *input.MatchNotification
	}

	s.store.Upsert(p)
	s.logger.Info("preferences updated", zap.String("user_id", userID))

	writeJSON(w, http.StatusOK, ackResponse{
		Success: true,
		Message: "notifications configured for user " + userID,
	})
}

func (s *Server) handleNotifyMatch(w http.ResponseWriter, r *http.Request) {
	var req notifyMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.UserID == "" || req.OpportunityID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and opportunity_id are required"})
		return
	}

	outcome := s.runner.NotifyNewMatch(r.Context(), req.UserID, req.OpportunityID, req.OpportunityName, req.Score, req.Benefits)
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleDeadlineCycle(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if raw := r.URL.Query().Get("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "now must be RFC 3339"})
			return
		}
		now = parsed
	}

	outcomes, err := s.runner.RunDeadlineCycle(r.Context(), now)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, outcomes)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
