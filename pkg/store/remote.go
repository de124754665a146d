package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
)

const DefaultAPIBase = "http://localhost:3001/api"

type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Remote talks to the docuextract REST service. Every failure, including a
// non-2xx status, is reported as a transport error.
type Remote struct {
	config RemoteConfig
	client *http.Client
}

func NewRemote(config RemoteConfig) *Remote {
	if config.BaseURL == "" {
		config.BaseURL = DefaultAPIBase
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	return &Remote{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// analysisRecord is the POST /analysis body.
type analysisRecord struct {
	models.AnalysisResult
	UserID string `json:"userId,omitempty"`
}

func (r *Remote) Health(ctx context.Context) error {
	return r.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (r *Remote) Login(ctx context.Context, email, password string) (*models.UserAccount, error) {
	var u models.UserAccount
	if err := r.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Remote) Signup(ctx context.Context, user models.UserAccount) error {
	return r.do(ctx, http.MethodPost, "/auth/signup", user, nil)
}

func (r *Remote) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := r.do(ctx, http.MethodGet, "/auth/exists?email="+url.QueryEscape(email), nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (r *Remote) Stats(ctx context.Context) (*models.AdminStats, error) {
	var s models.AdminStats
	if err := r.do(ctx, http.MethodGet, "/admin/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Remote) SaveAnalysis(ctx context.Context, userID string, result models.AnalysisResult) error {
	return r.do(ctx, http.MethodPost, "/analysis", analysisRecord{AnalysisResult: result, UserID: userID}, nil)
}

func (r *Remote) History(ctx context.Context, userID string) ([]models.AnalysisResult, error) {
	history := []models.AnalysisResult{}
	if err := r.do(ctx, http.MethodGet, "/analysis/history?userId="+url.QueryEscape(userID), nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.config.BaseURL+path, reader)
	if err != nil {
		return models.NewTransportError("build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return models.NewTransportError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return models.NewTransportError(fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewTransportError(fmt.Sprintf("%s %s: decode response", method, path), err)
	}
	return nil
}
