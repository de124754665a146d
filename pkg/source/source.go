package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"
)

type LoaderConfig struct {
	RateLimit  float64 // remote fetches per second
	Timeout    time.Duration
	MaxBytes   int64
	OnProgress func(location string)
}

// Loader reads documents from local paths or http(s) URLs.
type Loader struct {
	config  LoaderConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config LoaderConfig) *Loader {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.MaxBytes == 0 {
		config.MaxBytes = 50 << 20
	}

	return &Loader{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Loader {
	return NewWithConfig(LoaderConfig{})
}

func (l *Loader) Load(ctx context.Context, location string) (models.Document, error) {
	if l.config.OnProgress != nil {
		l.config.OnProgress(location)
	}
	if isRemote(location) {
		return l.fetch(ctx, location)
	}
	return l.readFile(location)
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (l *Loader) readFile(p string) (models.Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return models.Document{}, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	data, err := l.readLimited(f)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", p, err)
	}

	return models.Document{
		Name:      filepath.Base(p),
		MediaType: detect(data, ""),
		Data:      data,
		Size:      int64(len(data)),
	}, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (models.Document, error) {
	// Apply rate limiting
	if err := l.limiter.Wait(ctx); err != nil {
		return models.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return models.Document{}, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, rawURL)
	}

	data, err := l.readLimited(resp.Body)
	if err != nil {
		return models.Document{}, fmt.Errorf("read %s: %w", rawURL, err)
	}

	return models.Document{
		Name:      nameFromURL(rawURL, resp.Header.Get("Content-Disposition")),
		MediaType: detect(data, resp.Header.Get("Content-Type")),
		Data:      data,
		Size:      int64(len(data)),
	}, nil
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.config.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.config.MaxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", l.config.MaxBytes)
	}
	return data, nil
}

// detect trusts a specific declared type and sniffs the bytes otherwise.
func detect(data []byte, declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err == nil && mt != "" && mt != "application/octet-stream" && mt != "binary/octet-stream" {
		return mt
	}
	return mimetype.Detect(data).String()
}

func nameFromURL(rawURL, disposition string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}
	name := path.Base(strings.TrimSuffix(u.Path, "/"))
	if name == "." || name == "/" || name == "" {
		return u.Host
	}
	return name
}
