package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/internal/types"
	"github.com/Adithya-charan/docuExtract/pkg/auth"
	"github.com/Adithya-charan/docuExtract/pkg/llm"
	"github.com/Adithya-charan/docuExtract/pkg/locale"
	"github.com/Adithya-charan/docuExtract/pkg/logging"
)

var ErrNoResult = errors.New("no analysis result is ready")

// Store is the persistence the application context needs: the shared
// backend operations plus the per-device signed-in user.
type Store interface {
	types.Backend
	CurrentUser() (*models.UserAccount, error)
	SetCurrentUser(u models.UserAccount) error
	ClearCurrentUser() error
}

type SessionOpener interface {
	OpenSession(ctx context.Context, resultID, grounding, locale string) (*llm.Session, error)
}

type AppConfig struct {
	Store    Store
	Machine  *Machine
	Sessions SessionOpener
	Locale   string
	Logger   *logging.Logger
}

// App holds the state of one user session: who is signed in, the display
// locale, recent history and the active conversation. It is built from the
// persisted device state and changed only through its methods.
type App struct {
	store    Store
	machine  *Machine
	sessions SessionOpener
	log      *logging.Logger

	mu      sync.Mutex
	user    *models.UserAccount
	locale  string
	history []models.AnalysisResult
	session *llm.Session
}

func NewApp(ctx context.Context, config AppConfig) (*App, error) {
	if config.Store == nil || config.Machine == nil {
		return nil, fmt.Errorf("app requires a store and a pipeline machine")
	}
	log := config.Logger
	if log == nil {
		log = logging.Nop()
	}
	code := config.Locale
	if !locale.Supported(code) {
		code = locale.Default
	}

	user, err := config.Store.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}

	a := &App{
		store:    config.Store,
		machine:  config.Machine,
		sessions: config.Sessions,
		log:      log.With("app"),
		user:     user,
		locale:   code,
	}
	a.refreshHistory(ctx)
	return a, nil
}

func (a *App) Machine() *Machine { return a.machine }

func (a *App) User() *models.UserAccount {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *App) Locale() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.locale
}

func (a *App) History() []models.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.AnalysisResult(nil), a.history...)
}

// Session returns the active conversation, or nil if none was opened for
// the current result.
func (a *App) Session() *llm.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Result is the result of the last successful run, if the machine is Ready.
func (a *App) Result() *models.AnalysisResult {
	st := a.machine.State()
	if st.Kind != Ready {
		return nil
	}
	return st.Result
}

func (a *App) Login(ctx context.Context, email, password string) (*models.UserAccount, error) {
	u, err := a.store.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	public := u.Public()
	if err := a.store.SetCurrentUser(public); err != nil {
		return nil, fmt.Errorf("failed to persist current user: %w", err)
	}

	a.mu.Lock()
	a.user = &public
	a.mu.Unlock()

	a.refreshHistory(ctx)
	a.log.Info().Str("user_id", public.ID).Str("role", string(public.Role)).Msg("signed in")
	return &public, nil
}

// Signup registers a new account and signs it in.
func (a *App) Signup(ctx context.Context, req auth.SignupRequest) (*models.UserAccount, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	err := a.store.Signup(ctx, models.UserAccount{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	return a.Login(ctx, req.Email, req.Password)
}

// Logout forgets the signed-in user and the current result and conversation.
// Persisted history is kept.
func (a *App) Logout() error {
	if err := a.store.ClearCurrentUser(); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	a.machine.Abandon()

	a.mu.Lock()
	a.user = nil
	a.session = nil
	a.history = nil
	a.mu.Unlock()
	return nil
}

// SetLocale switches the response language. An open conversation is told
// about the switch and keeps its transcript.
func (a *App) SetLocale(code string) error {
	if !locale.Supported(code) {
		return fmt.Errorf("unsupported locale %q", code)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.locale = code
	if a.session != nil {
		a.session.Resync(code)
	}
	return nil
}

// Analyze runs the pipeline over doc. Any open conversation is discarded
// before the run starts.
func (a *App) Analyze(ctx context.Context, doc models.Document) (*models.AnalysisResult, error) {
	a.mu.Lock()
	a.session = nil
	code := a.locale
	userID := ""
	if a.user != nil {
		userID = a.user.ID
	}
	a.mu.Unlock()

	res, err := a.machine.Start(ctx, doc, code, userID)
	if err != nil {
		return nil, err
	}
	a.refreshHistory(ctx)
	return res, nil
}

// Chat sends text to the conversation about the current result, opening it
// on first use.
func (a *App) Chat(ctx context.Context, text string) (string, error) {
	session, err := a.openSession(ctx)
	if err != nil {
		return "", err
	}
	return session.Send(ctx, text)
}

func (a *App) openSession(ctx context.Context) (*llm.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.machine.State()
	if st.Kind != Ready || st.Result == nil {
		return nil, ErrNoResult
	}
	if a.session != nil && a.session.ResultID() == st.Result.ID {
		return a.session, nil
	}
	if a.sessions == nil {
		return nil, models.NewConfigurationError("no chat model configured", nil)
	}

	session, err := a.sessions.OpenSession(ctx, st.Result.ID, st.Grounding, a.locale)
	if err != nil {
		return nil, err
	}
	a.session = session
	return session, nil
}

func (a *App) refreshHistory(ctx context.Context) {
	a.mu.Lock()
	userID := ""
	if a.user != nil {
		userID = a.user.ID
	}
	a.mu.Unlock()

	history, err := a.store.History(ctx, userID)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to load history")
		return
	}

	a.mu.Lock()
	a.history = history
	a.mu.Unlock()
}
