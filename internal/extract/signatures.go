package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/lexmeta/internal/model"
)

// anchorPhrases are execution/witness-language hints passed to the
// model so it searches the right regions of the document
var anchorPhrases = []string{
	"IN WITNESS WHEREOF",
	"EXECUTED as of",
	"Signed, sealed and delivered",
	"By: ",
	"Signature:",
	"/s/",
	"Respectfully submitted",
}

const signaturesSystem = `You are a legal document analyst. You locate signature blocks ` +
	`in legal documents and you reply with strict JSON only.`

func signaturesPrompt(text string) string {
	return fmt.Sprintf(`Find the signature blocks in the following legal document.

Signature regions are usually introduced by phrases such as: %s.

Reply with ONLY a JSON object of this shape:
{
  "signatures": [
    {
      "party": "<party label, e.g. LANDLORD or the company name>",
      "signer_name": "<person who signed, empty if blank>",
      "signer_title": "<their title, empty if absent>",
      "date": "<date string next to the signature, verbatim>",
      "position": <approximate character offset of the block>,
      "is_signed": <true only if an actual name or signature mark is present>
    }
  ],
  "party_count": <number of distinct signing entities>,
  "confidence": <number 0.0-1.0>
}

Rules:
1. A block whose name/title/date slots are blank or underscore placeholders is is_signed: false,
   even when execution language is present.
2. party_count counts distinct entities, which may be fewer than the number of blocks.
3. If the document has no signature region at all, return an empty list and party_count 0.

Document:
---
%s
---`, strings.Join(anchorPhrases, "; "), clipText(text))
}

// NullSignatures is the documented fallback when signature detection
// cannot be completed
func NullSignatures() model.SignatureResult {
	return model.SignatureResult{
		Signatures: []model.SignatureBlock{},
		PartyCount: 0,
		Confidence: 0,
	}
}

// Signatures locates signature blocks and the distinct signing
// entities behind them. Placeholder-only blocks are reported unsigned
// regardless of what the model claimed.
func (e *Extractor) Signatures(ctx context.Context, text string) (model.SignatureResult, error) {
	var out model.SignatureResult
	err := e.query(ctx, StageSignatures, signaturesSystem, signaturesPrompt(text), signaturesSchema, &out, nil)
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			return NullSignatures(), nil
		}
		return NullSignatures(), err
	}

	out.Confidence = clamp01(out.Confidence)
	bound := len([]rune(text))

	for i := range out.Signatures {
		blk := &out.Signatures[i]
		blk.Position = clampPosition(blk.Position, bound)

		// An anchor phrase alone does not make a block signed: all
		// placeholder fields means nobody actually signed
		if isPlaceholder(blk.SignerName) && isPlaceholder(blk.Date) {
			blk.IsSigned = false
		}
		if isPlaceholder(blk.SignerName) {
			blk.SignerName = ""
		}
		if isPlaceholder(blk.SignerTitle) {
			blk.SignerTitle = ""
		}
		if isPlaceholder(blk.Date) {
			blk.Date = ""
		}
	}

	if len(out.Signatures) > 0 {
		out.PartyCount = distinctParties(out.Signatures)
	} else if out.PartyCount > 0 {
		// Signing parties implied by context with no block found is a
		// low-confidence inference, never a confident one
		if out.Confidence > 0.4 {
			out.Confidence = 0.4
		}
	}

	if out.Signatures == nil {
		out.Signatures = []model.SignatureBlock{}
	}

	return out, nil
}

// distinctParties counts distinct signing entities across blocks,
// preferring the party label and falling back to the signer name, so
// one entity signing twice counts once
func distinctParties(blocks []model.SignatureBlock) int {
	seen := make(map[string]bool)
	for _, blk := range blocks {
		key := strings.ToLower(strings.TrimSpace(blk.Party))
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(blk.SignerName))
		}
		if key == "" {
			// Anonymous block: count it individually
			key = fmt.Sprintf("block@%d", blk.Position)
		}
		seen[key] = true
	}
	return len(seen)
}
