package model

import "time"

// Config holds the complete runtime configuration.
// It is stateless from the pipeline's point of view: two concurrent
// invocations may share one Config but never mutate it.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Stages      StageTimeouts     `yaml:"stages"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Input       InputConfig       `yaml:"input"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the model provider shared by all five stages
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "anthropic", "ollama"
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds, per request
	MaxTokens int    `yaml:"max_tokens"`

	// Requests-per-second ceiling shared by concurrent stage calls
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`

	// Proxy settings for the HTTP-based providers
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// StageTimeouts holds the independent per-stage timeouts.
// A stage that exceeds its timeout is replaced by its null result; it
// never blocks or fails the rest of the pipeline.
type StageTimeouts struct {
	DocumentType time.Duration `yaml:"document_type"`
	Sections     time.Duration `yaml:"sections"`
	Signatures   time.Duration `yaml:"signatures"`
	Dates        time.Duration `yaml:"dates"`
	Parties      time.Duration `yaml:"parties"`
}

// For returns the timeout for the named stage, defaulting to 45s for
// unknown names so a misconfigured stage still terminates.
func (t StageTimeouts) For(stage string) time.Duration {
	var d time.Duration
	switch stage {
	case "document_type":
		d = t.DocumentType
	case "sections":
		d = t.Sections
	case "signatures":
		d = t.Signatures
	case "dates":
		d = t.Dates
	case "parties":
		d = t.Parties
	}
	if d <= 0 {
		d = 45 * time.Second
	}
	return d
}

// CacheConfig configures the extraction-result cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Dir     string        `yaml:"dir,omitempty"` // empty = memory only
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// InputConfig bounds document loading
type InputConfig struct {
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "",
			Timeout:           30,
			MaxTokens:         2000,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Stages: StageTimeouts{
			DocumentType: 45 * time.Second,
			Sections:     60 * time.Second,
			Signatures:   45 * time.Second,
			Dates:        60 * time.Second,
			Parties:      45 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Input: InputConfig{
			MaxBodyBytes: 2_000_000,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
