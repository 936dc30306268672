package score

import (
	"github.com/ppiankov/lexmeta/internal/extract"
	"github.com/ppiankov/lexmeta/internal/model"
)

// StageWeights maps stage name to its share of the overall score
type StageWeights map[string]float64

// weightTable makes the per-genre weighting explicit rather than
// implicit in code. Each row sums to 1.0.
//
// Rationale: the stages that are central to a genre carry the score.
// For a contract, signatures and dates matter; for correspondence the
// classification dominates and the other stages contribute near-zero
// weight, so a memo is not penalized for legitimately having no
// sections or signatures to find.
var weightTable = map[model.DocumentType]StageWeights{
	model.DocTypeContract: {
		extract.StageDocumentType: 0.20,
		extract.StageSections:     0.20,
		extract.StageSignatures:   0.25,
		extract.StageDates:        0.20,
		extract.StageParties:      0.15,
	},
	model.DocTypePleading: {
		extract.StageDocumentType: 0.25,
		extract.StageSections:     0.25,
		extract.StageSignatures:   0.15,
		extract.StageDates:        0.20,
		extract.StageParties:      0.15,
	},
	model.DocTypeMotion: {
		extract.StageDocumentType: 0.25,
		extract.StageSections:     0.30,
		extract.StageSignatures:   0.10,
		extract.StageDates:        0.20,
		extract.StageParties:      0.15,
	},
	model.DocTypeCorrespondence: {
		extract.StageDocumentType: 0.70,
		extract.StageSections:     0.05,
		extract.StageSignatures:   0.05,
		extract.StageDates:        0.10,
		extract.StageParties:      0.10,
	},
	model.DocTypeOther: {
		extract.StageDocumentType: 0.40,
		extract.StageSections:     0.15,
		extract.StageSignatures:   0.15,
		extract.StageDates:        0.15,
		extract.StageParties:      0.15,
	},
}

// weightsFor returns the weighting row for a document type, falling
// back to the "other" row for anything outside the closed set
func weightsFor(docType model.DocumentType) StageWeights {
	if w, ok := weightTable[docType]; ok {
		return w
	}
	return weightTable[model.DocTypeOther]
}
