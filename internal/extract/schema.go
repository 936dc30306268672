package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Every model response is validated against the stage's schema right
// here at the boundary. Nothing unchecked flows past this file.

// SchemaError reports a model response that could not be parsed into
// the stage's typed contract. It is recovered locally by the stage
// (retry once, then null result) and never escapes the extractor.
type SchemaError struct {
	Stage string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("stage %s: response violates schema: %v", e.Stage, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// invariantError reports a response that parsed cleanly but violates a
// cross-field invariant (e.g. contracting parties not a subset of the
// party list). Retriable like a schema violation, but the decoded
// payload is still usable for graceful degradation.
type invariantError struct {
	stage string
	err   error
}

func (e *invariantError) Error() string {
	return fmt.Sprintf("stage %s: response violates invariant: %v", e.stage, e.err)
}

func (e *invariantError) Unwrap() error {
	return e.err
}

const docTypeSchemaJSON = `{
	"type": "object",
	"required": ["type", "confidence"],
	"properties": {
		"type": {"type": "string", "enum": ["contract", "pleading", "motion", "correspondence", "other"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"alternatives": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "confidence"],
				"properties": {
					"type": {"type": "string"},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1}
				}
			}
		},
		"reasoning": {"type": "string"}
	}
}`

const sectionsSchemaJSON = `{
	"type": "object",
	"required": ["sections", "structure_type", "confidence"],
	"properties": {
		"sections": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title", "start_position"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"section_number": {"type": "string"},
					"level": {"type": "integer", "minimum": 1},
					"start_position": {"type": "integer", "minimum": 0},
					"end_position": {"type": "integer", "minimum": 0},
					"content": {"type": "string"}
				}
			}
		},
		"structure_type": {"type": "string", "enum": ["numbered", "hierarchical", "simple", "unstructured"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

const signaturesSchemaJSON = `{
	"type": "object",
	"required": ["signatures", "party_count", "confidence"],
	"properties": {
		"signatures": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"party": {"type": "string"},
					"signer_name": {"type": "string"},
					"signer_title": {"type": "string"},
					"date": {"type": "string"},
					"position": {"type": "integer", "minimum": 0},
					"is_signed": {"type": "boolean"}
				}
			}
		},
		"party_count": {"type": "integer", "minimum": 0},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

const datesSchemaJSON = `{
	"type": "object",
	"required": ["dates", "confidence"],
	"properties": {
		"dates": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["raw_date", "date_type"],
				"properties": {
					"raw_date": {"type": "string", "minLength": 1},
					"date_type": {"type": "string", "enum": ["effective_date", "expiration_date", "termination_date", "signature_date", "execution_date", "filing_date", "other"]},
					"position": {"type": "integer", "minimum": 0}
				}
			}
		},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

const partiesSchemaJSON = `{
	"type": "object",
	"required": ["parties", "confidence"],
	"properties": {
		"parties": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"type": {"type": "string"},
					"role": {"type": "string"},
					"position": {"type": "integer", "minimum": 0}
				}
			}
		},
		"contracting_parties": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

var (
	docTypeSchema    = jsonschema.MustCompileString("document_type.json", docTypeSchemaJSON)
	sectionsSchema   = jsonschema.MustCompileString("sections.json", sectionsSchemaJSON)
	signaturesSchema = jsonschema.MustCompileString("signatures.json", signaturesSchemaJSON)
	datesSchema      = jsonschema.MustCompileString("dates.json", datesSchemaJSON)
	partiesSchema    = jsonschema.MustCompileString("parties.json", partiesSchemaJSON)
)

// decodeStage parses raw model output, validates it against the
// stage's schema, and unmarshals it into out. Any failure is a
// SchemaError.
func decodeStage(stage, raw string, schema *jsonschema.Schema, out interface{}) error {
	payload, err := extractJSON(raw)
	if err != nil {
		return &SchemaError{Stage: stage, Err: err}
	}

	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return &SchemaError{Stage: stage, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := schema.Validate(v); err != nil {
		return &SchemaError{Stage: stage, Err: err}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &SchemaError{Stage: stage, Err: fmt.Errorf("decode: %w", err)}
	}

	return nil
}

// extractJSON recovers a JSON object from model output, tolerating
// markdown code fences and surrounding prose.
func extractJSON(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	// Strip ```json ... ``` fences
	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		}
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	// Fall back to the outermost braces when prose surrounds the object
	if !strings.HasPrefix(content, "{") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in response")
		}
		content = content[start : end+1]
	}

	return []byte(content), nil
}
