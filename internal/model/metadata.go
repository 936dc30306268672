package model

import "time"

// DocumentType is the closed set of genre labels the classifier may emit
type DocumentType string

const (
	DocTypeContract       DocumentType = "contract"
	DocTypePleading       DocumentType = "pleading"
	DocTypeMotion         DocumentType = "motion"
	DocTypeCorrespondence DocumentType = "correspondence"
	DocTypeOther          DocumentType = "other"
)

// KnownDocumentType reports whether t is a member of the closed type set
func KnownDocumentType(t DocumentType) bool {
	switch t {
	case DocTypeContract, DocTypePleading, DocTypeMotion, DocTypeCorrespondence, DocTypeOther:
		return true
	}
	return false
}

// TypeAlternative is a ranked runner-up classification
type TypeAlternative struct {
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// DocumentTypeResult is the classifier stage output.
// Invariant: Confidence >= every alternative's confidence.
type DocumentTypeResult struct {
	Type         DocumentType      `json:"type"`
	Confidence   float64           `json:"confidence"`
	Alternatives []TypeAlternative `json:"alternatives"`
	Reasoning    string            `json:"reasoning,omitempty"`
}

// StructureType classifies how a document's sections are organized
type StructureType string

const (
	StructureNumbered     StructureType = "numbered"
	StructureHierarchical StructureType = "hierarchical"
	StructureSimple       StructureType = "simple"
	StructureUnstructured StructureType = "unstructured"
)

// Section is one detected structural heading
type Section struct {
	Title         string `json:"title"`
	SectionNumber string `json:"section_number,omitempty"` // e.g. "1.2.1"
	Level         int    `json:"level"`                    // nesting depth, >= 1
	StartPosition int    `json:"start_position"`           // offset into normalized text
	EndPosition   int    `json:"end_position,omitempty"`
	Content       string `json:"content,omitempty"` // short excerpt
}

// SectionResult is the section-detector stage output.
// Invariant: Sections ordered by StartPosition ascending.
type SectionResult struct {
	Sections      []Section     `json:"sections"`
	StructureType StructureType `json:"structure_type"`
	Confidence    float64       `json:"confidence"`
}

// SignatureBlock is one detected signature region.
// IsSigned is false when the name/title/date slots are blank or
// underscore placeholders, even if execution language is present.
type SignatureBlock struct {
	Party       string `json:"party,omitempty"`
	SignerName  string `json:"signer_name,omitempty"`
	SignerTitle string `json:"signer_title,omitempty"`
	Date        string `json:"date,omitempty"` // raw string, not normalized
	Position    int    `json:"position"`
	IsSigned    bool   `json:"is_signed"`
}

// SignatureResult is the signature-detector stage output.
// PartyCount counts distinct signing entities, which can differ from
// the number of blocks (one entity may sign twice).
type SignatureResult struct {
	Signatures []SignatureBlock `json:"signatures"`
	PartyCount int              `json:"party_count"`
	Confidence float64          `json:"confidence"`
}

// DateType classifies what a dated reference governs
type DateType string

const (
	DateEffective   DateType = "effective_date"
	DateExpiration  DateType = "expiration_date"
	DateTermination DateType = "termination_date"
	DateSignature   DateType = "signature_date"
	DateExecution   DateType = "execution_date"
	DateFiling      DateType = "filing_date"
	DateOther       DateType = "other"
)

// DateReference is one extracted date.
// NormalizedDate is always an ISO 8601 calendar date (YYYY-MM-DD).
type DateReference struct {
	RawDate        string   `json:"raw_date"`
	NormalizedDate string   `json:"normalized_date"`
	DateType       DateType `json:"date_type"`
	Position       int      `json:"position"`
}

// DateResult is the date-extractor stage output.
// PrimaryDate, when present, is one of the elements of Dates.
type DateResult struct {
	Dates       []DateReference `json:"dates"`
	PrimaryDate *DateReference  `json:"primary_date,omitempty"`
	Confidence  float64         `json:"confidence"`
}

// PartyType is the entity form inferred from naming conventions
type PartyType string

const (
	PartyCorporation PartyType = "corporation"
	PartyLLC         PartyType = "LLC"
	PartyLLP         PartyType = "LLP"
	PartyIndividual  PartyType = "individual"
	PartyOtherType   PartyType = "other"
)

// Party is one named party found anywhere in the document
type Party struct {
	Name     string    `json:"name"`
	Type     PartyType `json:"type,omitempty"` // omitted rather than guessed
	Role     string    `json:"role,omitempty"` // buyer, seller, plaintiff, defendant, ...
	Position int       `json:"position"`
}

// PartyResult is the party-extractor stage output.
// Invariant (aggregator-enforced): ContractingParties is a subset of
// the names in Parties.
type PartyResult struct {
	Parties            []Party  `json:"parties"`
	ContractingParties []string `json:"contracting_parties,omitempty"`
	Confidence         float64  `json:"confidence"`
}

// ConfidenceReport combines the five stage confidences into one overall
// score. Breakdown always carries all five raw stage values regardless
// of how they were weighted.
type ConfidenceReport struct {
	Overall   float64            `json:"overall"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// LegalMetadata is the composed record returned by one pipeline
// invocation. Constructed once, immutable after return; ownership
// passes to the caller, which may persist or discard it.
type LegalMetadata struct {
	InvocationID string             `json:"invocation_id"`
	SourceFile   string             `json:"source_file,omitempty"`
	DocumentType DocumentTypeResult `json:"document_type"`
	Sections     SectionResult      `json:"sections"`
	Signatures   SignatureResult    `json:"signatures"`
	Dates        DateResult         `json:"dates"`
	Parties      PartyResult        `json:"parties"`
	Confidence   ConfidenceReport   `json:"confidence"`
	Partial      bool               `json:"partial"` // at least one stage fell back to its null result after timeout/unavailability
	ExtractedAt  time.Time          `json:"extracted_at"`
}
