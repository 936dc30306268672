// Package extract implements the five independent extraction stages of
// the legal metadata pipeline: document type, sections, signatures,
// dates, and parties. Each stage issues one model query, validates the
// response against a strict schema at the boundary, retries once with a
// stricter instruction on violation, and falls back to its documented
// null result on repeated failure. Transport errors (timeouts,
// unavailability) propagate to the orchestrator, which substitutes the
// null result and continues.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ppiankov/lexmeta/internal/llm"
)

// Stage names, used as breakdown keys and timeout lookups
const (
	StageDocumentType = "document_type"
	StageSections     = "sections"
	StageSignatures   = "signatures"
	StageDates        = "dates"
	StageParties      = "parties"
)

// Stages lists all five stage names in canonical order
var Stages = []string{StageDocumentType, StageSections, StageSignatures, StageDates, StageParties}

// maxPromptChars bounds how much document text goes into one prompt
const maxPromptChars = 24000

const strictReminder = `Your previous reply did not satisfy the required JSON schema. ` +
	`Respond with ONLY a single valid JSON object matching the schema exactly. ` +
	`No prose, no markdown fences, no trailing commentary.`

// Extractor runs the five extraction stages against one LLM provider.
// It is stateless and safe for concurrent use; each stage call receives
// its own copy of the normalized text and returns a self-contained
// result.
type Extractor struct {
	provider  llm.Provider
	model     string
	maxTokens int
}

// New creates an Extractor backed by the given provider
func New(provider llm.Provider, modelName string, maxTokens int) *Extractor {
	return &Extractor{
		provider:  provider,
		model:     modelName,
		maxTokens: maxTokens,
	}
}

// query issues one stage query with the retry-once-on-violation policy.
// check, when non-nil, runs after a successful decode and may flag a
// cross-field invariant violation; the decoded payload stays in out for
// graceful degradation by the caller.
func (e *Extractor) query(ctx context.Context, stage, system, prompt string, schema *jsonschema.Schema, out interface{}, check func() error) error {
	attempt := 0

	return retry.Do(
		func() error {
			p := prompt
			if attempt > 0 {
				p = prompt + "\n\n" + strictReminder
			}
			attempt++

			resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
				System:    system,
				Prompt:    p,
				Model:     e.model,
				MaxTokens: e.maxTokens,
			})
			if err != nil {
				// Transport-level failure: retrying with a stricter prompt
				// cannot help, the orchestrator handles substitution
				return retry.Unrecoverable(fmt.Errorf("stage %s: %w", stage, err))
			}

			if err := decodeStage(stage, resp.Content, schema, out); err != nil {
				return err
			}

			if check != nil {
				if err := check(); err != nil {
					return &invariantError{stage: stage, err: err}
				}
			}

			return nil
		},
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

// clipText bounds document text for prompt inclusion, marking the cut
func clipText(text string) string {
	if len(text) <= maxPromptChars {
		return text
	}
	return text[:maxPromptChars] + "\n[... document truncated ...]"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampPosition(pos, bound int) int {
	if pos < 0 {
		return 0
	}
	if pos > bound {
		return bound
	}
	return pos
}

// isPlaceholder reports whether a field value is blank or a fill-in
// placeholder ("__________", "[NAME]", "N/A") rather than real content
func isPlaceholder(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	if strings.Trim(s, "_-. \t") == "" {
		return true
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return true
	}
	switch strings.ToLower(s) {
	case "n/a", "na", "none", "tbd":
		return true
	}
	return false
}
