package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		Temperature float64 `yaml:"temperature"`
		EmbedModel  string  `yaml:"embed_model"`
	} `yaml:"llm"`

	Store struct {
		APIBase string        `yaml:"api_base"`
		DataDir string        `yaml:"data_dir"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"store"`

	Server struct {
		Addr        string        `yaml:"addr"`
		DatabaseURL string        `yaml:"database_url"`
		RedisURL    string        `yaml:"redis_url"`
		StatsTTL    time.Duration `yaml:"stats_ttl"`
		VectorDim   int           `yaml:"vector_dim"`
	} `yaml:"server"`

	Source struct {
		RateLimit float64       `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"source"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`

	UI struct {
		Locale   string `yaml:"locale"`
		Progress bool   `yaml:"progress"`
	} `yaml:"ui"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docuextract/config.yaml"),
			"/etc/docuextract/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	config.UI.Progress = true
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = ProviderGoogleAI
	}
	if config.LLM.Model == "" {
		if config.LLM.Provider == ProviderOllama {
			config.LLM.Model = "mistral"
		} else {
			config.LLM.Model = "gemini-2.5-flash"
		}
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.2
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.EmbedModel == "" {
		config.LLM.EmbedModel = "nomic-embed-text:latest"
	}

	if config.Store.APIBase == "" {
		config.Store.APIBase = "http://localhost:3001/api"
	}
	if config.Store.DataDir == "" {
		config.Store.DataDir = filepath.Join(os.Getenv("HOME"), ".local/share/docuextract")
	}
	if config.Store.Timeout == 0 {
		config.Store.Timeout = 5 * time.Second
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":3001"
	}
	if config.Server.StatsTTL == 0 {
		config.Server.StatsTTL = 30 * time.Second
	}
	if config.Server.VectorDim == 0 {
		config.Server.VectorDim = 768
	}

	if config.Source.RateLimit == 0 {
		config.Source.RateLimit = 2.0
	}
	if config.Source.Timeout == 0 {
		config.Source.Timeout = 30 * time.Second
	}

	if config.Admin.Email == "" {
		config.Admin.Email = "admin@docubrain.ai"
	}
	if config.Admin.Password == "" {
		config.Admin.Password = "admin123"
	}

	if config.UI.Locale == "" {
		config.UI.Locale = "en"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "console"
	}
}

func mergeWithEnv(config *Config) {
	if key := firstEnv("GEMINI_API_KEY", "VITE_GEMINI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Server.DatabaseURL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.Server.RedisURL = redisURL
	}
	if apiBase := os.Getenv("DOCUEXTRACT_API_BASE"); apiBase != "" {
		config.Store.APIBase = strings.TrimRight(apiBase, "/")
	}
	if dataDir := os.Getenv("DOCUEXTRACT_DATA_DIR"); dataDir != "" {
		config.Store.DataDir = dataDir
	}
	if locale := os.Getenv("DOCUEXTRACT_LOCALE"); locale != "" {
		config.UI.Locale = locale
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
