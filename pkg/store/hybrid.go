package store

import (
	"context"
	"strings"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/internal/types"
	"github.com/Adithya-charan/docuExtract/pkg/logging"
)

// ProbeTimeout bounds the reachability check.
const ProbeTimeout = time.Second

// RemoteBackend is a Backend that can also report its reachability.
type RemoteBackend interface {
	types.Backend
	Health(ctx context.Context) error
}

// AdminCredentials identify the administrator principal. They are checked
// before either backend is consulted.
type AdminCredentials struct {
	Email    string
	Password string
}

// Hybrid prefers the remote service and falls back to the local store on
// any remote failure. Callers only see the data; the only error surfaced
// from a fallback is a duplicate email on signup.
type Hybrid struct {
	remote RemoteBackend
	local  *Local
	admin  AdminCredentials
	log    *logging.Logger
}

func NewHybrid(remote RemoteBackend, local *Local, admin AdminCredentials, log *logging.Logger) *Hybrid {
	if log == nil {
		log = logging.Nop()
	}
	return &Hybrid{
		remote: remote,
		local:  local,
		admin:  admin,
		log:    log.With("store"),
	}
}

// IsAPIAvailable is a fast pre-check. No operation depends on it.
func (h *Hybrid) IsAPIAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	return h.remote.Health(ctx) == nil
}

func (h *Hybrid) Login(ctx context.Context, email, password string) (*models.UserAccount, error) {
	if h.isAdmin(email, password) {
		return &models.UserAccount{
			ID:    "admin",
			Name:  "System Admin",
			Email: h.admin.Email,
			Plan:  models.PlanEnterprise,
			Role:  models.RoleAdmin,
		}, nil
	}

	u, err := h.remote.Login(ctx, email, password)
	if err == nil {
		return u, nil
	}
	h.fallback("login", err)
	return h.local.Login(ctx, email, password)
}

func (h *Hybrid) Signup(ctx context.Context, user models.UserAccount) error {
	if h.isAdminEmail(user.Email) {
		return models.NewDuplicateEmailError(user.Email)
	}

	err := h.remote.Signup(ctx, user)
	if err == nil {
		return nil
	}
	h.fallback("signup", err)
	return h.local.Signup(ctx, user)
}

func (h *Hybrid) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	if h.isAdminEmail(email) {
		return true, nil
	}

	exists, err := h.remote.CheckEmailExists(ctx, email)
	if err == nil {
		return exists, nil
	}
	h.fallback("check email", err)
	return h.local.CheckEmailExists(ctx, email)
}

func (h *Hybrid) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats, err := h.remote.Stats(ctx)
	if err == nil {
		return stats, nil
	}
	h.fallback("stats", err)
	return h.local.Stats(ctx)
}

// SaveAnalysis writes remotely when possible and always locally. The two
// writes are not atomic; a remote failure leaves the histories divergent.
func (h *Hybrid) SaveAnalysis(ctx context.Context, userID string, result models.AnalysisResult) error {
	if err := h.remote.SaveAnalysis(ctx, userID, result); err != nil {
		h.log.Warn().Err(err).Str("analysis_id", result.ID).Msg("remote save failed, history kept locally only")
	}
	return h.local.SaveAnalysis(ctx, userID, result)
}

func (h *Hybrid) History(ctx context.Context, userID string) ([]models.AnalysisResult, error) {
	history, err := h.remote.History(ctx, userID)
	if err == nil {
		return history, nil
	}
	h.fallback("history", err)
	return h.local.History(ctx, userID)
}

func (h *Hybrid) CurrentUser() (*models.UserAccount, error) { return h.local.CurrentUser() }
func (h *Hybrid) SetCurrentUser(u models.UserAccount) error { return h.local.SetCurrentUser(u) }
func (h *Hybrid) ClearCurrentUser() error                   { return h.local.ClearCurrentUser() }

func (h *Hybrid) Close() error {
	return h.local.Close()
}

func (h *Hybrid) fallback(op string, err error) {
	h.log.Warn().Err(err).Str("op", op).Msg("remote unavailable, using local store")
}

func (h *Hybrid) isAdminEmail(email string) bool {
	return h.admin.Email != "" && strings.EqualFold(strings.TrimSpace(email), h.admin.Email)
}

func (h *Hybrid) isAdmin(email, password string) bool {
	return h.isAdminEmail(email) && h.admin.Password != "" && password == h.admin.Password
}
