package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/lexmeta/internal/model"
)

const sectionsSystem = `You are a legal document analyst. You detect the structural ` +
	`sections of legal documents and you reply with strict JSON only.`

func sectionsPrompt(text string) string {
	return fmt.Sprintf(`Find the named or numbered structural sections of the following legal document.

Reply with ONLY a JSON object of this shape:
{
  "sections": [
    {
      "title": "<heading text>",
      "section_number": "<e.g. 1.2.1, omit if unnumbered>",
      "level": <nesting depth, 1 for top level>,
      "start_position": <approximate character offset of the heading>,
      "end_position": <approximate character offset where the section ends, omit if unknown>,
      "content": "<first sentence of the section, optional>"
    }
  ],
  "structure_type": "<numbered | hierarchical | simple | unstructured>",
  "confidence": <number 0.0-1.0>
}

Rules:
1. List sections in document order.
2. "numbered" means a flat numbered list, "hierarchical" means nested numbering like 1.2.1,
   "simple" means unnumbered headings, "unstructured" means no discernible headings.
3. If the document is unstructured, return an empty sections list and confidence below 0.8.

Document:
---
%s
---`, clipText(text))
}

// NullSections is the documented fallback when section detection
// cannot be completed
func NullSections() model.SectionResult {
	return model.SectionResult{
		Sections:      []model.Section{},
		StructureType: model.StructureUnstructured,
		Confidence:    0,
	}
}

// Sections finds the document's structural headings. Out-of-order or
// out-of-bounds offsets are dropped rather than fatal, and for
// numbered/hierarchical structures the nesting level is derived from
// the numbering syntax, trusting the model's level only when no
// numbering is present.
func (e *Extractor) Sections(ctx context.Context, text string) (model.SectionResult, error) {
	var out model.SectionResult
	err := e.query(ctx, StageSections, sectionsSystem, sectionsPrompt(text), sectionsSchema, &out, nil)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			return NullSections(), nil
		}
		return NullSections(), err
	}

	out.Confidence = clamp01(out.Confidence)

	bound := len([]rune(text))
	numbered := out.StructureType == model.StructureNumbered || out.StructureType == model.StructureHierarchical

	kept := make([]model.Section, 0, len(out.Sections))
	dropped := 0
	lastStart := -1
	for _, sec := range out.Sections {
		// Offsets must be monotonically non-decreasing and in bounds;
		// violating entries are excluded, not fatal
		if sec.StartPosition < 0 || sec.StartPosition > bound || sec.StartPosition < lastStart {
			dropped++
			continue
		}
		lastStart = sec.StartPosition

		if sec.EndPosition != 0 {
			sec.EndPosition = clampPosition(sec.EndPosition, bound)
			if sec.EndPosition < sec.StartPosition {
				sec.EndPosition = 0
			}
		}

		// Numbering syntax is authoritative for nesting depth
		if numbered && sec.SectionNumber != "" {
			sec.Level = numberingDepth(sec.SectionNumber)
		}
		if sec.Level < 1 {
			sec.Level = 1
		}

		kept = append(kept, sec)
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "sections: dropped %d out-of-order or out-of-bounds entries\n", dropped)
	}
	out.Sections = kept

	// An unstructured verdict with a populated section list is suspect;
	// keep the list but hold confidence under the documented ceiling
	if out.StructureType == model.StructureUnstructured && len(out.Sections) > 1 && out.Confidence >= 0.8 {
		out.Confidence = 0.79
	}

	return out, nil
}

// numberingDepth returns the nesting depth implied by a dotted section
// number: "3" -> 1, "1.2" -> 2, "1.2.1" -> 3
func numberingDepth(sectionNumber string) int {
	n := strings.Trim(sectionNumber, ".")
	if n == "" {
		return 1
	}
	return strings.Count(n, ".") + 1
}
