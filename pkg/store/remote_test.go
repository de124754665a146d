package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteContract(t *testing.T) {
	var saved map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		if c.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.UserAccount{ID: "u1", Email: c.Email, Plan: models.PlanPro})
	})
	mux.HandleFunc("/api/auth/exists", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"exists": r.URL.Query().Get("email") == "a+b@example.com"})
	})
	mux.HandleFunc("/api/analysis", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/api/analysis/history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))
		json.NewEncoder(w).Encode([]models.AnalysisResult{result("h1")})
	})
	mux.HandleFunc("/api/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.AdminStats{TotalUsers: 3})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	r := NewRemote(RemoteConfig{BaseURL: server.URL + "/api/"})

	require.NoError(t, r.Health(ctx))

	u, err := r.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = r.Login(ctx, "a@example.com", "nope")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrorTypeTransport))
	assert.Contains(t, err.Error(), "status 401")

	exists, err := r.CheckEmailExists(ctx, "a+b@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, r.SaveAnalysis(ctx, "u1", result("r1")))
	assert.Equal(t, "r1", saved["id"])
	assert.Equal(t, "u1", saved["userId"])
	assert.Equal(t, "r1.pdf", saved["fileName"])

	history, err := r.History(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, ids(history))

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)

	// Signup is not routed in this server.
	err = r.Signup(ctx, models.UserAccount{Email: "x@example.com"})
	assert.True(t, models.IsType(err, models.ErrorTypeTransport))
}

func TestRemoteUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	r := NewRemote(RemoteConfig{BaseURL: base})
	err := r.Health(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrorTypeTransport))
}
