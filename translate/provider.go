package translate

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle       = "google"
	ProviderGoogleAI     = "google-ai"
	ProviderGroq         = "groq"
	ProviderCustomOpenAI = "custom-openai"
	ProviderOllama       = "ollama"
)

// SystemPrompt is sent to chat providers; {{targetLang}} is replaced with
// the English name of the target language.
const SystemPrompt = `You are a professional translator localizing the user interface of a web application built with Django.

Translate the user's message into {{targetLang}}.

RULES:
- The text is a model label, field name, help text, admin action or error message.
- Translate for natural, concise UI wording in {{targetLang}}, not word-for-word.
- Preserve all format placeholders exactly as-is (%s, %d, %(name)s, {name}, {0}).
- Preserve HTML tags, leading/trailing whitespace and punctuation patterns.
- Keep brand names and proper nouns unchanged.
- Return ONLY the translated text, without quotes, explanations or markdown.`

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration of a translation service.
type Provider struct {
	// ID is the provider identifier (google, google-ai, groq, ...).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL; unused by google.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
	// MaxRetries bounds retries of one request; 0 means the default.
	MaxRetries int
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google Translate",
			Timeout: 30 * time.Second,
		},
		ProviderGoogleAI: {
			ID:      ProviderGoogleAI,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.5-flash",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.1",
			Timeout: 120 * time.Second,
		},
	}
}

// NeedsAPIKey reports whether the provider cannot work without a key.
func (p Provider) NeedsAPIKey() bool {
	switch p.ID {
	case ProviderGoogleAI, ProviderGroq:
		return true
	}
	return false
}

// Validate checks that the provider has what its API needs.
func (p Provider) Validate() error {
	switch p.ID {
	case ProviderGoogle:
		return nil
	case ProviderGoogleAI, ProviderGroq, ProviderCustomOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q", p.ID)
	}
	if p.BaseURL == "" {
		return fmt.Errorf("provider %s: base URL is required", p.ID)
	}
	if p.Model == "" {
		return fmt.Errorf("provider %s: model is required", p.ID)
	}
	if p.NeedsAPIKey() && p.APIKey == "" {
		return fmt.Errorf("provider %s: API key is required", p.ID)
	}
	return nil
}

func (p Provider) effectiveTimeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return 120 * time.Second
}

func (p Provider) effectiveMaxRetries() int {
	if p.MaxRetries > 0 {
		return p.MaxRetries
	}
	return 3
}
