// Package score combines the five stage confidences into one overall
// score and enforces the record-level invariants before the composed
// metadata leaves the pipeline.
package score

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/lexmeta/internal/extract"
	"github.com/ppiankov/lexmeta/internal/model"
)

// Aggregator computes the weighted overall confidence and repairs
// invariant violations in the composed record
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate enforces record-level invariants in place and fills in the
// confidence report. It never rejects the whole record: a violating
// sub-field is discarded, the rest of the stage result is kept.
func (a *Aggregator) Aggregate(meta *model.LegalMetadata) {
	a.enforceInvariants(meta)

	breakdown := map[string]float64{
		extract.StageDocumentType: clamp01(meta.DocumentType.Confidence),
		extract.StageSections:     clamp01(meta.Sections.Confidence),
		extract.StageSignatures:   clamp01(meta.Signatures.Confidence),
		extract.StageDates:        clamp01(meta.Dates.Confidence),
		extract.StageParties:      clamp01(meta.Parties.Confidence),
	}

	weights := weightsFor(meta.DocumentType.Type)

	var overall, totalWeight float64
	for stage, confidence := range breakdown {
		w := weights[stage]
		overall += confidence * w
		totalWeight += w
	}
	if totalWeight > 0 {
		overall /= totalWeight
	}

	meta.Confidence = model.ConfidenceReport{
		Overall:   clamp01(overall),
		Breakdown: breakdown,
	}
}

// enforceInvariants repairs the cross-stage invariants the record must
// satisfy on return, regardless of what the stages produced
func (a *Aggregator) enforceInvariants(meta *model.LegalMetadata) {
	// No alternative may outrank the primary classification
	meta.DocumentType.Confidence = clamp01(meta.DocumentType.Confidence)
	for i := range meta.DocumentType.Alternatives {
		alt := &meta.DocumentType.Alternatives[i]
		alt.Confidence = clamp01(alt.Confidence)
		if alt.Confidence > meta.DocumentType.Confidence {
			alt.Confidence = meta.DocumentType.Confidence
		}
	}

	// Sections ordered by start position
	sort.SliceStable(meta.Sections.Sections, func(i, j int) bool {
		return meta.Sections.Sections[i].StartPosition < meta.Sections.Sections[j].StartPosition
	})

	// Primary date must be one of the listed dates
	if meta.Dates.PrimaryDate != nil && !containsDate(meta.Dates.Dates, *meta.Dates.PrimaryDate) {
		meta.Dates.PrimaryDate = nil
	}

	// Contracting parties must be a subset of the party names; a
	// violation discards the sub-field, not the stage result
	if dropped := enforcePartySubset(&meta.Parties); dropped != "" {
		fmt.Fprintf(os.Stderr, "aggregator: dropping contracting_parties, %q not in party list\n", dropped)
	}
}

// enforcePartySubset clears ContractingParties when it names a party
// missing from the list, returning the offending name
func enforcePartySubset(r *model.PartyResult) string {
	if len(r.ContractingParties) == 0 {
		return ""
	}
	names := make(map[string]bool, len(r.Parties))
	for _, p := range r.Parties {
		names[strings.ToLower(strings.TrimSpace(p.Name))] = true
	}
	for _, cp := range r.ContractingParties {
		if !names[strings.ToLower(strings.TrimSpace(cp))] {
			r.ContractingParties = nil
			return cp
		}
	}
	return ""
}

func containsDate(dates []model.DateReference, ref model.DateReference) bool {
	for _, d := range dates {
		if d.NormalizedDate == ref.NormalizedDate && d.DateType == ref.DateType && d.Position == ref.Position {
			return true
		}
	}
	return false
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
