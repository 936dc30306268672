package extract

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/lexmeta/internal/llm"
)

// stubProvider returns canned responses in submission order.
// Responses beyond the scripted list repeat the last one.
type stubProvider struct {
	responses []string
	err       error
	calls     int32
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	n := int(atomic.AddInt32(&s.calls, 1)) - 1
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &llm.CompletionResponse{Content: "{}"}, nil
	}
	if n >= len(s.responses) {
		n = len(s.responses) - 1
	}
	return &llm.CompletionResponse{Content: s.responses[n]}, nil
}

// promptRecorder captures the prompts it receives before delegating
type promptRecorder struct {
	stubProvider
	prompts []string
}

func (p *promptRecorder) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.prompts = append(p.prompts, req.Prompt)
	return p.stubProvider.Complete(ctx, req)
}

func newTestExtractor(provider llm.Provider) *Extractor {
	return New(provider, "test-model", 500)
}

func TestQuery_RetriesOnceWithStricterPrompt(t *testing.T) {
	// First response violates the schema, second is valid; the retry
	// prompt must carry the strict reminder
	provider := &promptRecorder{stubProvider: stubProvider{responses: []string{
		`not json at all`,
		`{"type": "contract", "confidence": 0.9}`,
	}}}

	ext := newTestExtractor(provider)
	result, err := ext.DocumentType(context.Background(), "AGREEMENT between parties.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != "contract" {
		t.Errorf("expected contract after retry, got %s", result.Type)
	}

	if len(provider.prompts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(provider.prompts))
	}
	if strings.Contains(provider.prompts[0], strictReminder) {
		t.Error("first attempt should not carry the strict reminder")
	}
	if !strings.Contains(provider.prompts[1], strictReminder) {
		t.Error("retry attempt should carry the strict reminder")
	}
}

func TestQuery_TransportErrorNotRetried(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	ext := newTestExtractor(provider)

	_, err := ext.DocumentType(context.Background(), "some document")
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&provider.calls) != 1 {
		t.Errorf("transport error should not be retried, got %d calls", provider.calls)
	}
}

func TestClipText(t *testing.T) {
	short := "short document"
	if clipText(short) != short {
		t.Error("short text should pass through unchanged")
	}

	long := strings.Repeat("x", maxPromptChars+100)
	clipped := clipText(long)
	if len(clipped) <= maxPromptChars {
		t.Error("clipped text should carry a truncation marker")
	}
	if !strings.Contains(clipped, "truncated") {
		t.Error("clipped text should be marked as truncated")
	}
	if len(clipped) >= len(long) {
		t.Error("clipped text should be shorter than the original")
	}
}
