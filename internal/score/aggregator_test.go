package score

import (
	"math"
	"testing"

	"github.com/ppiankov/lexmeta/internal/extract"
	"github.com/ppiankov/lexmeta/internal/model"
)

func TestWeightTable_RowsSumToOne(t *testing.T) {
	for docType, weights := range weightTable {
		var sum float64
		for _, stage := range extract.Stages {
			w, ok := weights[stage]
			if !ok {
				t.Errorf("%s: missing weight for stage %s", docType, stage)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("%s: weights sum to %f, want 1.0", docType, sum)
		}
	}
}

func TestWeightsFor_UnknownTypeFallsBack(t *testing.T) {
	w := weightsFor(model.DocumentType("memo"))
	if w[extract.StageDocumentType] != weightTable[model.DocTypeOther][extract.StageDocumentType] {
		t.Error("unknown type should use the other row")
	}
}

func sampleMetadata() *model.LegalMetadata {
	return &model.LegalMetadata{
		DocumentType: model.DocumentTypeResult{Type: model.DocTypeContract, Confidence: 0.9},
		Sections: model.SectionResult{
			Sections: []model.Section{
				{Title: "Definitions", StartPosition: 10, Level: 1},
				{Title: "Payment", StartPosition: 300, Level: 1},
			},
			StructureType: model.StructureNumbered,
			Confidence:    0.8,
		},
		Signatures: model.SignatureResult{
			Signatures: []model.SignatureBlock{{Party: "ACME", SignerName: "Jane Smith", IsSigned: true}},
			PartyCount: 1,
			Confidence: 0.85,
		},
		Dates: model.DateResult{
			Dates: []model.DateReference{
				{RawDate: "March 1, 2024", NormalizedDate: "2024-03-01", DateType: model.DateEffective, Position: 40},
			},
			Confidence: 0.9,
		},
		Parties: model.PartyResult{
			Parties:    []model.Party{{Name: "ACME Corp."}, {Name: "Jane Smith"}},
			Confidence: 0.75,
		},
	}
}

func TestAggregate_OverallInRange(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	agg.Aggregate(meta)

	if meta.Confidence.Overall < 0 || meta.Confidence.Overall > 1 {
		t.Errorf("overall confidence out of range: %f", meta.Confidence.Overall)
	}
	// All stage confidences sit in [0.75, 0.9]; the weighted mean must too
	if meta.Confidence.Overall < 0.75 || meta.Confidence.Overall > 0.9 {
		t.Errorf("weighted mean outside the stage range: %f", meta.Confidence.Overall)
	}
}

func TestAggregate_BreakdownCarriesAllStages(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	agg.Aggregate(meta)

	for _, stage := range extract.Stages {
		if _, ok := meta.Confidence.Breakdown[stage]; !ok {
			t.Errorf("breakdown missing stage %s", stage)
		}
	}
	if got := meta.Confidence.Breakdown[extract.StageParties]; got != 0.75 {
		t.Errorf("breakdown should carry raw stage values, got %f", got)
	}
}

func TestAggregate_AlternativesCappedAtPrimary(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	meta.DocumentType.Confidence = 0.6
	meta.DocumentType.Alternatives = []model.TypeAlternative{
		{Type: model.DocTypePleading, Confidence: 0.95},
	}
	agg.Aggregate(meta)

	if meta.DocumentType.Alternatives[0].Confidence > meta.DocumentType.Confidence {
		t.Errorf("alternative confidence %f exceeds primary %f",
			meta.DocumentType.Alternatives[0].Confidence, meta.DocumentType.Confidence)
	}
}

func TestAggregate_SectionsResorted(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	meta.Sections.Sections = []model.Section{
		{Title: "Payment", StartPosition: 300},
		{Title: "Definitions", StartPosition: 10},
	}
	agg.Aggregate(meta)

	if meta.Sections.Sections[0].Title != "Definitions" {
		t.Errorf("sections should be ordered by start position, got %+v", meta.Sections.Sections)
	}
}

func TestAggregate_PhantomPrimaryDateCleared(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	meta.Dates.PrimaryDate = &model.DateReference{
		RawDate: "never written", NormalizedDate: "1999-01-01", DateType: model.DateOther, Position: 0,
	}
	agg.Aggregate(meta)

	if meta.Dates.PrimaryDate != nil {
		t.Error("a primary date absent from the date list must be cleared")
	}
}

func TestAggregate_PartySubsetEnforced(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	meta.Parties.ContractingParties = []string{"ACME Corp.", "Phantom LLC"}
	agg.Aggregate(meta)

	if meta.Parties.ContractingParties != nil {
		t.Errorf("contracting parties with a phantom name must be dropped, got %v", meta.Parties.ContractingParties)
	}
	if len(meta.Parties.Parties) != 2 {
		t.Error("the party list itself must survive")
	}
}

func TestAggregate_CorrespondenceWeighting(t *testing.T) {
	// A confidently classified memo with legitimately empty structural
	// stages should still score well: classification dominates
	agg := NewAggregator()
	meta := &model.LegalMetadata{
		DocumentType: model.DocumentTypeResult{Type: model.DocTypeCorrespondence, Confidence: 0.95},
		Sections:     model.SectionResult{StructureType: model.StructureUnstructured, Confidence: 0.3},
		Signatures:   model.SignatureResult{Confidence: 0.3},
		Dates:        model.DateResult{Confidence: 0.5},
		Parties:      model.PartyResult{Confidence: 0.4},
	}
	agg.Aggregate(meta)

	if meta.Confidence.Overall < 0.7 {
		t.Errorf("correspondence weighting should let classification dominate, got %f", meta.Confidence.Overall)
	}
}

func TestAggregate_ConfidencesClamped(t *testing.T) {
	agg := NewAggregator()
	meta := sampleMetadata()
	meta.Dates.Confidence = 1.7
	meta.Parties.Confidence = -0.2
	agg.Aggregate(meta)

	if meta.Confidence.Breakdown[extract.StageDates] != 1 {
		t.Errorf("expected dates clamped to 1, got %f", meta.Confidence.Breakdown[extract.StageDates])
	}
	if meta.Confidence.Breakdown[extract.StageParties] != 0 {
		t.Errorf("expected parties clamped to 0, got %f", meta.Confidence.Breakdown[extract.StageParties])
	}
	if meta.Confidence.Overall < 0 || meta.Confidence.Overall > 1 {
		t.Errorf("overall out of range: %f", meta.Confidence.Overall)
	}
}
