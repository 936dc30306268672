package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/lexmeta/internal/model"
)

const datesSystem = `You are a legal document analyst. You find dated references in ` +
	`legal documents and you reply with strict JSON only.`

func datesPrompt(text string) string {
	return fmt.Sprintf(`Find every date-bearing phrase in the following legal document.

Reply with ONLY a JSON object of this shape:
{
  "dates": [
    {
      "raw_date": "<the date exactly as written, e.g. "January 15, 2024">",
      "date_type": "<effective_date | expiration_date | termination_date | signature_date | execution_date | filing_date | other>",
      "position": <approximate character offset of the phrase>
    }
  ],
  "confidence": <number 0.0-1.0>
}

Rules:
1. Copy raw_date verbatim from the document; do not reformat it.
2. date_type reflects what the surrounding language says the date governs.
3. A document with no dates gets an empty list; that is a legitimate outcome,
   report the confidence you have in the absence, not zero.

Document:
---
%s
---`, clipText(text))
}

// datesPayload is the wire shape of the dates stage; normalization
// happens locally after decoding
type datesPayload struct {
	Dates []struct {
		RawDate  string         `json:"raw_date"`
		DateType model.DateType `json:"date_type"`
		Position int            `json:"position"`
	} `json:"dates"`
	Confidence float64 `json:"confidence"`
}

// NullDates is the documented fallback when date extraction cannot be
// completed
func NullDates() model.DateResult {
	return model.DateResult{
		Dates:      []model.DateReference{},
		Confidence: 0,
	}
}

// Dates extracts dated references, normalizes each deterministically,
// and selects the primary date. Raw dates that fail normalization are
// dropped rather than emitted with an invalid canonical form.
func (e *Extractor) Dates(ctx context.Context, text string) (model.DateResult, error) {
	var payload datesPayload
	err := e.query(ctx, StageDates, datesSystem, datesPrompt(text), datesSchema, &payload, nil)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			return NullDates(), nil
		}
		return NullDates(), err
	}

	bound := len([]rune(text))
	out := model.DateResult{
		Dates:      make([]model.DateReference, 0, len(payload.Dates)),
		Confidence: clamp01(payload.Confidence),
	}

	for _, d := range payload.Dates {
		normalized, ok := NormalizeDate(d.RawDate)
		if !ok {
			continue
		}
		out.Dates = append(out.Dates, model.DateReference{
			RawDate:        d.RawDate,
			NormalizedDate: normalized,
			DateType:       d.DateType,
			Position:       clampPosition(d.Position, bound),
		})
	}

	out.PrimaryDate = selectPrimaryDate(out.Dates)

	return out, nil
}

// primaryPrecedence orders date types by legal significance for
// primary-date selection
var primaryPrecedence = [][]model.DateType{
	{model.DateEffective},
	{model.DateExecution, model.DateSignature},
	{model.DateFiling},
}

// selectPrimaryDate applies the documented precedence: effective >
// execution/signature > filing > first date by position. Ties within a
// precedence tier break by earliest position.
func selectPrimaryDate(dates []model.DateReference) *model.DateReference {
	if len(dates) == 0 {
		return nil
	}

	for _, tier := range primaryPrecedence {
		var best *model.DateReference
		for i := range dates {
			for _, dt := range tier {
				if dates[i].DateType != dt {
					continue
				}
				if best == nil || dates[i].Position < best.Position {
					best = &dates[i]
				}
			}
		}
		if best != nil {
			ref := *best
			return &ref
		}
	}

	// No significant type: first date encountered by position
	best := &dates[0]
	for i := range dates {
		if dates[i].Position < best.Position {
			best = &dates[i]
		}
	}
	ref := *best
	return &ref
}
