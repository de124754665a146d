package config

import (
	"fmt"
	"net/url"
)

const (
	ProviderGoogleAI = "googleai"
	ProviderOllama   = "ollama"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks field shapes only. A missing API key is reported by the
// analysis client when a request is made, not here.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.Provider != ProviderGoogleAI && c.LLM.Provider != ProviderOllama {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("provider must be %q or %q", ProviderGoogleAI, ProviderOllama),
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 1",
		})
	}

	if c.LLM.Provider == ProviderOllama && !isAbsURL(c.LLM.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	// Validate Store config
	if !isAbsURL(c.Store.APIBase) {
		errors = append(errors, ValidationError{
			Field:   "store.api_base",
			Message: "invalid API base URL",
		})
	}

	if c.Store.DataDir == "" {
		errors = append(errors, ValidationError{
			Field:   "store.data_dir",
			Message: "data_dir is required",
		})
	}

	if c.Store.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "store.timeout",
			Message: "timeout must be positive",
		})
	}

	// Validate Server config
	if c.Server.DatabaseURL != "" && !isAbsURL(c.Server.DatabaseURL) {
		errors = append(errors, ValidationError{
			Field:   "server.database_url",
			Message: "invalid database URL",
		})
	}

	if c.Server.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	// Validate Source config
	if c.Source.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "source.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Admin.Email == "" || c.Admin.Password == "" {
		errors = append(errors, ValidationError{
			Field:   "admin",
			Message: "admin email and password are required",
		})
	}

	return errors
}

func isAbsURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
