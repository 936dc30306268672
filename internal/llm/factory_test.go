package llm

import (
	"testing"

	"github.com/ppiankov/lexmeta/internal/model"
)

func TestNewProvider(t *testing.T) {
	cases := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"openai uppercase", Config{Provider: "OpenAI", APIKey: "k"}, "openai", false},
		{"anthropic", Config{Provider: "anthropic", APIKey: "k"}, "anthropic", false},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, "anthropic", false},
		{"ollama", Config{Provider: "ollama"}, "ollama", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "gemini"}, "", true},
		{"empty", Config{}, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider, err := NewProvider(tc.config)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider.Name() != tc.wantName {
				t.Errorf("expected provider %q, got %q", tc.wantName, provider.Name())
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	mc := model.LLMConfig{
		Provider:  "anthropic",
		Model:     "claude-3-5-sonnet-20241022",
		APIKey:    "key",
		BaseURL:   "http://example.com",
		Timeout:   15,
		MaxTokens: 1500,
	}

	c := ConfigFromModel(mc)
	if c.Provider != mc.Provider || c.Model != mc.Model || c.APIKey != mc.APIKey {
		t.Errorf("identity fields not carried over: %+v", c)
	}
	if c.Timeout != 15 || c.MaxTokens != 1500 {
		t.Errorf("limits not carried over: %+v", c)
	}
}
