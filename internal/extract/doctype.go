package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/lexmeta/internal/model"
)

// maxAlternatives bounds the ranked runner-up list requested from the model
const maxAlternatives = 3

const docTypeSystem = `You are a legal document analyst. You classify legal documents ` +
	`and you reply with strict JSON only.`

func docTypePrompt(text string) string {
	return fmt.Sprintf(`Classify the following legal document.

Allowed types: contract, pleading, motion, correspondence, other.

Reply with ONLY a JSON object of this shape:
{
  "type": "<one of the allowed types>",
  "confidence": <number 0.0-1.0>,
  "alternatives": [{"type": "<allowed type>", "confidence": <number 0.0-1.0>}],
  "reasoning": "<one or two sentences>"
}

Rules:
1. "confidence" is how certain you are of the primary type.
2. List up to %d ranked alternatives, strongest first. Omit types you did not seriously consider.
3. No alternative may have a higher confidence than the primary type.
4. If the document has no recognizable legal structure, use type "other" with confidence below 0.7.

Document:
---
%s
---`, maxAlternatives, clipText(text))
}

// NullDocumentType is the documented fallback when classification
// cannot be completed
func NullDocumentType() model.DocumentTypeResult {
	return model.DocumentTypeResult{
		Type:         model.DocTypeOther,
		Confidence:   0,
		Alternatives: []model.TypeAlternative{},
	}
}

// DocumentType labels the document with one of the closed type set.
// Low confidence signals ambiguity to downstream consumers but never
// changes the returned label; interpreting it is the caller's job.
func (e *Extractor) DocumentType(ctx context.Context, text string) (model.DocumentTypeResult, error) {
	var out model.DocumentTypeResult
	err := e.query(ctx, StageDocumentType, docTypeSystem, docTypePrompt(text), docTypeSchema, &out, nil)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			// Permanent schema failure after retry: documented fallback
			return NullDocumentType(), nil
		}
		return NullDocumentType(), err
	}

	out.Confidence = clamp01(out.Confidence)
	if !model.KnownDocumentType(out.Type) {
		out.Type = model.DocTypeOther
	}

	// "other" means no recognizable genre; a high-confidence "other"
	// is contradictory and must stay below the ambiguity threshold
	if out.Type == model.DocTypeOther && out.Confidence >= 0.7 {
		out.Confidence = 0.69
	}

	// Alternatives are best-effort: drop unknown labels, clamp, order
	// by confidence, and cap at the primary confidence
	alts := out.Alternatives[:0]
	for _, alt := range out.Alternatives {
		if !model.KnownDocumentType(alt.Type) || alt.Type == out.Type {
			continue
		}
		alt.Confidence = clamp01(alt.Confidence)
		if alt.Confidence > out.Confidence {
			alt.Confidence = out.Confidence
		}
		alts = append(alts, alt)
	}
	sort.SliceStable(alts, func(i, j int) bool { return alts[i].Confidence > alts[j].Confidence })
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	out.Alternatives = alts
	if out.Alternatives == nil {
		out.Alternatives = []model.TypeAlternative{}
	}

	return out, nil
}
