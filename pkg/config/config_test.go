package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "ollama"
  model: "llama3"
  base_url: "http://localhost:11434"
  temperature: 0.3

store:
  api_base: "http://api.internal:3001/api"
  data_dir: "/var/lib/docuextract"
  timeout: 2s

server:
  addr: ":8080"
  database_url: "postgres://localhost:5432/docuextract"
  stats_ttl: 10s

admin:
  email: "root@example.com"
  password: "s3cret"

ui:
  locale: "de"
  progress: true
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	// Test loading config
	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, ProviderOllama, config.LLM.Provider)
	assert.Equal(t, "llama3", config.LLM.Model)
	assert.Equal(t, 0.3, config.LLM.Temperature)
	assert.Equal(t, "/var/lib/docuextract", config.Store.DataDir)
	assert.Equal(t, 2*time.Second, config.Store.Timeout)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, 10*time.Second, config.Server.StatsTTL)
	assert.Equal(t, "root@example.com", config.Admin.Email)
	assert.Equal(t, "de", config.UI.Locale)
	assert.True(t, config.UI.Progress)

	// Defaults fill what the file left out
	assert.Equal(t, 768, config.Server.VectorDim)
	assert.Equal(t, 2.0, config.Source.RateLimit)
	assert.Equal(t, "info", config.Log.Level)
}

func TestApplyDefaults(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	assert.Equal(t, ProviderGoogleAI, config.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.LLM.Model)
	assert.Equal(t, 0.2, config.LLM.Temperature)
	assert.Equal(t, "http://localhost:3001/api", config.Store.APIBase)
	assert.Equal(t, "admin@docubrain.ai", config.Admin.Email)
	assert.Equal(t, "en", config.UI.Locale)
	assert.Empty(t, config.Validate())
}

func TestOllamaDefaultModel(t *testing.T) {
	config := &Config{}
	config.LLM.Provider = ProviderOllama
	applyDefaults(config)

	assert.Equal(t, "mistral", config.LLM.Model)
}

func TestConfigValidation(t *testing.T) {
	valid := &Config{}
	applyDefaults(valid)

	invalid := &Config{}
	applyDefaults(invalid)
	invalid.LLM.Provider = "openai"
	invalid.LLM.Temperature = 3.0
	invalid.Store.APIBase = "not a url"
	invalid.Server.VectorDim = -1

	tests := []struct {
		name          string
		config        *Config
		expectedErrs  int
		errorMessages []string
	}{
		{
			name:         "valid config",
			config:       valid,
			expectedErrs: 0,
		},
		{
			name:         "invalid config",
			config:       invalid,
			expectedErrs: 4,
			errorMessages: []string{
				"llm.provider: provider must be",
				"llm.temperature: temperature must be between 0 and 1",
				"store.api_base: invalid API base URL",
				"server.vector_dim: vector_dim must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := tt.config.Validate()
			assert.Len(t, errors, tt.expectedErrs)

			if tt.errorMessages != nil {
				for i, msg := range tt.errorMessages {
					assert.Contains(t, errors[i].Error(), msg)
				}
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("VITE_GEMINI_API_KEY", "vite-key")
	t.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("DOCUEXTRACT_API_BASE", "http://env-api:3001/api/")
	t.Setenv("DOCUEXTRACT_LOCALE", "ja")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "vite-key", config.LLM.APIKey)
	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
	assert.Equal(t, "postgres://env-db:5432/test", config.Server.DatabaseURL)
	assert.Equal(t, "http://env-api:3001/api", config.Store.APIBase)
	assert.Equal(t, "ja", config.UI.Locale)
}
