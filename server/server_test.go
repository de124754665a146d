package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type savedAnalysis struct {
	userID    string
	result    models.AnalysisResult
	embedding []float32
	seq       int
}

// memoryRepo mirrors the Postgres repository in memory.
type memoryRepo struct {
	mu       sync.Mutex
	users    []models.UserAccount
	analyses map[string]savedAnalysis
	seq      int
	down     bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{analyses: map[string]savedAnalysis{}}
}

func (m *memoryRepo) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errors.New("connection refused")
	}
	return nil
}

func (m *memoryRepo) FindUser(_ context.Context, email string) (*models.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) CreateUser(_ context.Context, u models.UserAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.NewDuplicateEmailError(u.Email)
		}
	}
	m.users = append(m.users, u)
	return nil
}

func (m *memoryRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindUser(ctx, email)
	return err == nil, nil
}

func (m *memoryRepo) Users(context.Context) ([]models.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserAccount(nil), m.users...), nil
}

func (m *memoryRepo) CountAnalyses(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.analyses), nil
}

func (m *memoryRepo) SaveAnalysis(_ context.Context, userID string, r models.AnalysisResult, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.analyses[r.ID]; ok && prev.userID != userID {
		return ErrNotOwner
	}
	m.seq++
	m.analyses[r.ID] = savedAnalysis{userID: userID, result: r, embedding: embedding, seq: m.seq}
	return nil
}

func (m *memoryRepo) sorted(keep func(savedAnalysis) bool) []savedAnalysis {
	var out []savedAnalysis
	for _, a := range m.analyses {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

func (m *memoryRepo) History(_ context.Context, userID string, limit int) ([]models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AnalysisResult{}
	for _, a := range m.sorted(func(a savedAnalysis) bool { return a.userID == userID }) {
		if len(out) == limit {
			break
		}
		out = append(out, a.result)
	}
	return out, nil
}

// Related ranks by the first embedding component only.
func (m *memoryRepo) Related(_ context.Context, id string, limit int) ([]models.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.analyses[id]
	out := []models.AnalysisResult{}
	if !ok || len(target.embedding) == 0 {
		return out, nil
	}
	candidates := m.sorted(func(a savedAnalysis) bool { return a.result.ID != id && len(a.embedding) > 0 })
	sort.SliceStable(candidates, func(i, j int) bool {
		return abs(candidates[i].embedding[0]-target.embedding[0]) < abs(candidates[j].embedding[0]-target.embedding[0])
	})
	for _, a := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, a.result)
	}
	return out, nil
}

func (m *memoryRepo) user(i int) models.UserAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[i]
}

func (m *memoryRepo) saved(id string) savedAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyses[id]
}

func (m *memoryRepo) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

type memoryCache struct {
	mu          sync.Mutex
	stats       *models.AdminStats
	gets        int
	invalidated int
}

func (c *memoryCache) Get(context.Context) (*models.AdminStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.stats == nil {
		return nil, ErrCacheMiss
	}
	return c.stats, nil
}

func (c *memoryCache) Set(_ context.Context, s *models.AdminStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = s
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	c.invalidated++
	return nil
}

// lengthEmbedder maps a summary to a one-dimensional vector of its length.
type lengthEmbedder struct{ err error }

func (e lengthEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text))}, nil
}

func newTestServer(t *testing.T, repo *memoryRepo, opts ...Option) *store.Remote {
	t.Helper()
	srv := New(Config{HashCost: bcrypt.MinCost}, repo, opts...)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return store.NewRemote(store.RemoteConfig{BaseURL: ts.URL + "/api"})
}

func analysis(id, summary string) models.AnalysisResult {
	return models.AnalysisResult{ID: id, FileName: id + ".pdf", Summary: summary, Hierarchy: []models.HierarchyNode{}, Issues: []string{}}
}

func TestAuthRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	remote := newTestServer(t, repo)

	user := models.UserAccount{Name: "Ana", Email: "Ana@Example.com", Phone: "5551234567", Password: "hunter22"}
	require.NoError(t, remote.Signup(ctx, user))

	stored := repo.user(0)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.Equal(t, models.PlanFree, stored.Plan)
	assert.NotEqual(t, "hunter22", stored.Password)

	err := remote.Signup(ctx, user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")

	exists, err := remote.CheckEmailExists(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = remote.CheckEmailExists(ctx, "bo@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	u, err := remote.Login(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, u.ID)
	assert.Empty(t, u.Password)

	_, err = remote.Login(ctx, "ana@example.com", "wrong")
	assert.Contains(t, err.Error(), "status 401")
	_, err = remote.Login(ctx, "nobody@example.com", "hunter22")
	assert.Contains(t, err.Error(), "status 401")
}

func TestSignupValidation(t *testing.T) {
	remote := newTestServer(t, newMemoryRepo())

	err := remote.Signup(context.Background(), models.UserAccount{Name: "Ana", Email: "not-an-email", Phone: "5551234567", Password: "hunter22"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	remote := newTestServer(t, newMemoryRepo())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis(id, "")))
	}
	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("a", "again")))
	require.NoError(t, remote.SaveAnalysis(ctx, "u2", analysis("z", "")))

	history, err := remote.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "a", history[0].ID)
	assert.Equal(t, "again", history[0].Summary)
	assert.Equal(t, "c", history[1].ID)
	assert.Equal(t, "b", history[2].ID)
}

func TestHistoryLimit(t *testing.T) {
	ctx := context.Background()
	remote := newTestServer(t, newMemoryRepo())

	for _, id := range strings.Split("a b c d e f g h i j k", " ") {
		require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis(id, "")))
	}

	history, err := remote.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 10)
	assert.Equal(t, "k", history[0].ID)
	assert.Equal(t, "b", history[9].ID)
}

func TestStatsCached(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	cache := &memoryCache{}
	remote := newTestServer(t, repo, WithStatsCache(cache), WithJitter(func() float64 { return 0 }))

	require.NoError(t, remote.Signup(ctx, models.UserAccount{Name: "Ana", Email: "ana@example.com", Phone: "5551234567", Password: "hunter22"}))
	repo.mu.Lock()
	repo.users[0].Plan = models.PlanPro
	repo.mu.Unlock()

	stats, err := remote.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 29, stats.MonthlyIncome)
	assert.Empty(t, stats.RecentUsers[0].Password)
	cache.mu.Lock()
	assert.NotNil(t, cache.stats)
	cache.mu.Unlock()

	// Served from cache until a write invalidates it.
	repo.mu.Lock()
	repo.users = append(repo.users, models.UserAccount{ID: "x", Plan: models.PlanFree})
	repo.mu.Unlock()
	stats, err = remote.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)

	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("a", "")))
	stats, err = remote.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalLogs)
	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Equal(t, 2, cache.invalidated)
}

func TestRelatedBySummaryEmbedding(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	srv := New(Config{HashCost: bcrypt.MinCost}, repo, WithEmbedder(lengthEmbedder{}))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	remote := store.NewRemote(store.RemoteConfig{BaseURL: ts.URL + "/api"})

	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("target", "twelve chars")))
	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("near", "eleven char")))
	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("far", "x")))
	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("none", "")))

	assert.Nil(t, repo.saved("none").embedding)

	resp, err := http.Get(ts.URL + "/api/analysis/target/related")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var related []models.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&related))
	require.Len(t, related, 2)
	assert.Equal(t, "near", related[0].ID)
	assert.Equal(t, "far", related[1].ID)
}

func TestSaveWithoutEmbeddingOnEmbedderFailure(t *testing.T) {
	repo := newMemoryRepo()
	remote := newTestServer(t, repo, WithEmbedder(lengthEmbedder{err: errors.New("ollama down")}))

	require.NoError(t, remote.SaveAnalysis(context.Background(), "u1", analysis("a", "summary")))
	assert.Nil(t, repo.saved("a").embedding)
}

func TestSaveRequiresID(t *testing.T) {
	remote := newTestServer(t, newMemoryRepo())

	err := remote.SaveAnalysis(context.Background(), "u1", models.AnalysisResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSaveKeepsOriginalOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	remote := newTestServer(t, repo)

	require.NoError(t, remote.SaveAnalysis(ctx, "u1", analysis("a", "mine")))

	err := remote.SaveAnalysis(ctx, "u2", analysis("a", "taken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")

	assert.Equal(t, "u1", repo.saved("a").userID)
	assert.Equal(t, "mine", repo.saved("a").result.Summary)

	history, err := remote.History(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHealth(t *testing.T) {
	repo := newMemoryRepo()
	remote := newTestServer(t, repo)

	require.NoError(t, remote.Health(context.Background()))

	repo.setDown(true)
	err := remote.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestHybridAgainstServer(t *testing.T) {
	ctx := context.Background()
	remote := newTestServer(t, newMemoryRepo())
	local, err := store.OpenLocal(store.LocalConfig{Dir: t.TempDir(), HashCost: bcrypt.MinCost})
	require.NoError(t, err)

	h := store.NewHybrid(remote, local, store.AdminCredentials{Email: "admin@docubrain.ai", Password: "admin123"}, nil)
	defer h.Close()

	require.True(t, h.IsAPIAvailable(ctx))
	require.NoError(t, h.Signup(ctx, models.UserAccount{Name: "Ana", Email: "ana@example.com", Phone: "5551234567", Password: "hunter22"}))

	u, err := h.Login(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, h.SaveAnalysis(ctx, u.ID, analysis("r1", "")))
	history, err := h.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "r1", history[0].ID)

	// The local mirror has it too.
	mirrored, err := local.History(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mirrored, 1)

	// The account lives only on the server.
	exists, err := local.CheckEmailExists(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
