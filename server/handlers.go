package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/auth"
	"github.com/Adithya-charan/docuExtract/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type analysisRecord struct {
	models.AnalysisResult
	UserID string `json:"userId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	u, err := s.repo.FindUser(r.Context(), req.Email)
	if errors.Is(err, ErrNotFound) || (err == nil && !auth.CheckPassword(u.Password, req.Password)) {
		s.writeError(w, http.StatusUnauthorized, "invalid email or password", "")
		return
	}
	if err != nil {
		s.internalError(w, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, u.Public())
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body models.UserAccount
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	req := auth.SignupRequest{Name: body.Name, Email: body.Email, Phone: body.Phone, Password: body.Password}.Normalize()
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid signup", err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, s.config.HashCost)
	if err != nil {
		s.internalError(w, "signup failed", err)
		return
	}

	u := models.UserAccount{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Phone:    req.Phone,
		Plan:     models.PlanFree,
		Role:     models.RoleUser,
		JoinedAt: time.Now().UnixMilli(),
	}
	err = s.repo.CreateUser(r.Context(), u)
	if models.IsType(err, models.ErrorTypeDuplicateEmail) {
		s.writeError(w, http.StatusConflict, "email already registered", "")
		return
	}
	if err != nil {
		s.internalError(w, "signup failed", err)
		return
	}

	s.invalidateStats(r.Context())
	s.log.Info().Str("user_id", u.ID).Msg("account created")
	writeJSON(w, http.StatusCreated, u.Public())
}

func (s *Server) handleEmailExists(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		s.writeError(w, http.StatusBadRequest, "email is required", "")
		return
	}

	exists, err := s.repo.EmailExists(r.Context(), email)
	if err != nil {
		s.internalError(w, "email lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// handleStats serves the dashboard aggregate, from cache when one is fresh.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cache != nil {
		stats, err := s.cache.Get(ctx)
		if err == nil {
			writeJSON(w, http.StatusOK, stats)
			return
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("stats cache unavailable")
		}
	}

	users, err := s.repo.Users(ctx)
	if err != nil {
		s.internalError(w, "stats failed", err)
		return
	}
	logs, err := s.repo.CountAnalyses(ctx)
	if err != nil {
		s.internalError(w, "stats failed", err)
		return
	}

	jitter := s.jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	stats := store.Aggregate(users, logs, jitter)

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache stats")
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSaveAnalysis(w http.ResponseWriter, r *http.Request) {
	var rec analysisRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if rec.ID == "" {
		s.writeError(w, http.StatusBadRequest, "analysis id is required", "")
		return
	}

	ctx := r.Context()
	var embedding []float32
	if s.embedder != nil && rec.Summary != "" {
		var err error
		embedding, err = s.embedder.EmbedText(ctx, rec.Summary)
		if err != nil {
			s.log.Warn().Err(err).Str("analysis_id", rec.ID).Msg("failed to embed summary, saving without it")
			embedding = nil
		}
	}

	err := s.repo.SaveAnalysis(ctx, rec.UserID, rec.AnalysisResult, embedding)
	if errors.Is(err, ErrNotOwner) {
		s.writeError(w, http.StatusForbidden, "analysis belongs to another user", "")
		return
	}
	if err != nil {
		s.internalError(w, "save failed", err)
		return
	}

	s.invalidateStats(ctx)
	writeJSON(w, http.StatusCreated, map[string]string{"id": rec.ID})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.repo.History(r.Context(), r.URL.Query().Get("userId"), s.config.HistoryLimit)
	if err != nil {
		s.internalError(w, "history failed", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	related, err := s.repo.Related(r.Context(), chi.URLParam(r, "id"), s.config.RelatedLimit)
	if err != nil {
		s.internalError(w, "related lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, related)
}

func (s *Server) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate stats cache")
	}
}

func (s *Server) internalError(w http.ResponseWriter, message string, err error) {
	s.log.Error().Err(err).Msg(message)
	s.writeError(w, http.StatusInternalServerError, message, "")
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
