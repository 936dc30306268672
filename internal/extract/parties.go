package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/lexmeta/internal/model"
)

const partiesSystem = `You are a legal document analyst. You identify the named parties ` +
	`in legal documents and you reply with strict JSON only.`

func partiesPrompt(text string) string {
	return fmt.Sprintf(`Find every named party in the following legal document. Search the whole
text, not just the preamble: litigation captions, riders, and schedules
introduce parties late.

Reply with ONLY a JSON object of this shape:
{
  "parties": [
    {
      "name": "<party name as written>",
      "type": "<corporation | LLC | LLP | individual | other, omit when the document does not say>",
      "role": "<buyer | seller | plaintiff | defendant | lessor | lessee | provider | customer | other, omit if unclear>",
      "position": <approximate character offset of the first mention>
    }
  ],
  "contracting_parties": ["<names of the principal signatories or opposing litigants>"],
  "confidence": <number 0.0-1.0>
}

Rules:
1. Entity type comes from naming conventions (Inc., Corp., LLC, LLP, "an individual");
   omit it rather than guess.
2. Every name in contracting_parties must appear verbatim in the parties list.
3. A document with no identifiable named parties gets an empty list and confidence below 0.5.

Document:
---
%s
---`, clipText(text))
}

// NullParties is the documented fallback when party extraction cannot
// be completed
func NullParties() model.PartyResult {
	return model.PartyResult{
		Parties:    []model.Party{},
		Confidence: 0,
	}
}

// Parties extracts named parties and the principal
// contracting/litigating subset. A response whose subset names parties
// missing from the list is malformed: it is retried once, then degraded
// to the full list with no contracting-party distinction.
func (e *Extractor) Parties(ctx context.Context, text string) (model.PartyResult, error) {
	var out model.PartyResult
	err := e.query(ctx, StageParties, partiesSystem, partiesPrompt(text), partiesSchema, &out, func() error {
		if name, ok := subsetViolation(out); !ok {
			return fmt.Errorf("contracting party %q not in party list", name)
		}
		return nil
	})
	if err != nil {
		var ie *invariantError
		if errors.As(err, &ie) {
			// The list itself decoded cleanly; keep it, drop the subset
			out.ContractingParties = nil
		} else {
			var se *SchemaError
			if errors.As(err, &se) {
				return NullParties(), nil
			}
			return NullParties(), err
		}
	}

	out.Confidence = clamp01(out.Confidence)

	for i := range out.Parties {
		p := &out.Parties[i]
		p.Position = clampPosition(p.Position, len([]rune(text)))
		if !knownPartyType(p.Type) {
			p.Type = ""
		}
		if p.Type == "" {
			p.Type = inferPartyType(p.Name)
		}
		p.Role = strings.ToLower(strings.TrimSpace(p.Role))
	}

	// No identifiable parties is a low-confidence outcome by contract
	if len(out.Parties) == 0 && out.Confidence >= 0.5 {
		out.Confidence = 0.49
	}

	if out.Parties == nil {
		out.Parties = []model.Party{}
	}

	return out, nil
}

// subsetViolation returns the first contracting-party name missing
// from the party list, or ok=true when the subset invariant holds
func subsetViolation(r model.PartyResult) (string, bool) {
	if len(r.ContractingParties) == 0 {
		return "", true
	}
	names := make(map[string]bool, len(r.Parties))
	for _, p := range r.Parties {
		names[strings.ToLower(strings.TrimSpace(p.Name))] = true
	}
	for _, cp := range r.ContractingParties {
		if !names[strings.ToLower(strings.TrimSpace(cp))] {
			return cp, false
		}
	}
	return "", true
}

func knownPartyType(t model.PartyType) bool {
	switch t {
	case model.PartyCorporation, model.PartyLLC, model.PartyLLP, model.PartyIndividual, model.PartyOtherType:
		return true
	}
	return false
}

// inferPartyType derives the entity form from naming conventions when
// the document states one; anything else stays empty rather than
// guessed
func inferPartyType(name string) model.PartyType {
	n := strings.ToLower(strings.TrimRight(strings.TrimSpace(name), "."))
	switch {
	case strings.HasSuffix(n, " llc") || strings.HasSuffix(n, ", llc") || strings.HasSuffix(n, " l.l.c"):
		return model.PartyLLC
	case strings.HasSuffix(n, " llp") || strings.HasSuffix(n, ", llp") || strings.HasSuffix(n, " l.l.p"):
		return model.PartyLLP
	case strings.HasSuffix(n, " inc") || strings.HasSuffix(n, ", inc") ||
		strings.HasSuffix(n, " corp") || strings.HasSuffix(n, ", corp") ||
		strings.HasSuffix(n, " corporation") || strings.HasSuffix(n, " incorporated"):
		return model.PartyCorporation
	case strings.Contains(n, "an individual"):
		return model.PartyIndividual
	}
	return ""
}
