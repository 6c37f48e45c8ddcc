package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inertia-app/inertia/internal/app/momentum"
	"github.com/inertia-app/inertia/internal/domain"
)

// handleCheckin runs the daily record writer for one submission.
func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var in domain.CheckinInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Date == "" {
		in.Date = time.Now().Format(domain.DateKey)
	}

	rec, reward, err := s.writer.Write(userID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record": rec,
		"reward": reward,
	})
}

// handleSessionStart runs the gap detector; the UI calls this once per
// app load, before showing today's check-in.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")
	today := r.URL.Query().Get("date")
	if today == "" {
		today = time.Now().Format(domain.DateKey)
	}

	report, err := s.gaps.Detect(userID, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type reconcileRequest struct {
	Date              string `json:"date,omitempty"`
	ExerciseCompleted bool   `json:"exercise_completed"`
}

// handleReconcile records the retroactive exercise answer for the most
// recent missed day.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	today := req.Date
	if today == "" {
		today = time.Now().Format(domain.DateKey)
	}

	rec, err := s.gaps.Reconcile(userID, today, req.ExerciseCompleted)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type exerciseRequest struct {
	Date    string `json:"date,omitempty"`
	Minutes int    `json:"minutes"`
	Source  string `json:"source,omitempty"`
}

// handleLogExercise stores a workout session for the date.
func (s *Server) handleLogExercise(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, "minutes must be positive")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(domain.DateKey)
	}
	if _, err := time.Parse(domain.DateKey, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrBadDate.Error())
		return
	}

	session := &domain.ExerciseSession{
		UserID:  userID,
		Date:    req.Date,
		Minutes: req.Minutes,
		Source:  req.Source,
	}
	if err := s.db.InsertExerciseSession(session); err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleGetRecord returns one day's record.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")
	date := chi.URLParam(r, "date")

	rec, err := s.db.GetRecord(userID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, domain.ErrRecordNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleListRecords returns recent history, newest first.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "days must be 1-365")
			return
		}
		days = n
	}

	records, err := s.db.ListRecords(userID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// handleSummary returns the headline numbers the UI renders on load.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")
	today := r.URL.Query().Get("date")
	if today == "" {
		today = time.Now().Format(domain.DateKey)
	}

	// Tomorrow as the exclusive bound makes today's record visible to
	// the backward scan.
	day, err := time.Parse(domain.DateKey, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrBadDate.Error())
		return
	}
	horizon := day.AddDate(0, 0, 1).Format(domain.DateKey)

	lastReal, err := s.db.LastRealRecordBefore(userID, horizon, momentum.MaxLookbackDays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	savers, err := s.db.StreakSavers(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	summary := map[string]interface{}{
		"momentum":             0,
		"trend":                domain.TrendStable,
		"current_streak":       0,
		"lifetime_streak":      0,
		"total_real_check_ins": 0,
		"streak_savers":        savers,
	}
	if lastReal != nil {
		summary["momentum"] = lastReal.MomentumScore
		summary["trend"] = lastReal.MomentumTrend
		summary["current_streak"] = lastReal.CurrentStreak
		summary["lifetime_streak"] = lastReal.LifetimeStreak
		summary["total_real_check_ins"] = lastReal.TotalRealCheckIns
		summary["last_check_in"] = lastReal.Date
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleMilestones returns the one-time achievement flags.
func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	state, err := s.db.GetMilestoneState(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingUser),
		errors.Is(err, domain.ErrMissingDate),
		errors.Is(err, domain.ErrBadDate),
		errors.Is(err, domain.ErrNoGrades),
		errors.Is(err, domain.ErrGradeOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNothingToReconcile),
		errors.Is(err, domain.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "check-in failed, please retry")
	}
}
