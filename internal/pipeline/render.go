package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/lexmeta/internal/extract"
	"github.com/ppiankov/lexmeta/internal/model"
)

// Renderer renders a LegalMetadata record to JSON, Markdown, and a
// stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the record as indented JSON
func (r *Renderer) RenderJSON(meta *model.LegalMetadata, path string) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(meta *model.LegalMetadata, path string) error {
	var b strings.Builder

	title := meta.SourceFile
	if title == "" {
		title = "Legal Document"
	}
	fmt.Fprintf(&b, "# Legal Metadata: %s\n\n", title)
	fmt.Fprintf(&b, "- **Document type**: %s (%.2f)\n", meta.DocumentType.Type, meta.DocumentType.Confidence)
	for _, alt := range meta.DocumentType.Alternatives {
		fmt.Fprintf(&b, "  - alternative: %s (%.2f)\n", alt.Type, alt.Confidence)
	}
	if meta.DocumentType.Reasoning != "" {
		fmt.Fprintf(&b, "- **Reasoning**: %s\n", meta.DocumentType.Reasoning)
	}
	fmt.Fprintf(&b, "- **Overall confidence**: %.2f\n", meta.Confidence.Overall)
	if meta.Partial {
		fmt.Fprintf(&b, "- **Partial**: one or more stages fell back to their null result\n")
	}
	fmt.Fprintf(&b, "- **Extracted at**: %s\n\n", meta.ExtractedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Sections (%s, %.2f)\n\n", meta.Sections.StructureType, meta.Sections.Confidence)
	if len(meta.Sections.Sections) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		b.WriteString("| # | Title | Level | Position |\n|---|---|---|---|\n")
		for _, sec := range meta.Sections.Sections {
			num := sec.SectionNumber
			if num == "" {
				num = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", num, sec.Title, sec.Level, sec.StartPosition)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Signatures (%d parties, %.2f)\n\n", meta.Signatures.PartyCount, meta.Signatures.Confidence)
	if len(meta.Signatures.Signatures) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		for _, blk := range meta.Signatures.Signatures {
			status := "unsigned"
			if blk.IsSigned {
				status = "signed"
			}
			fmt.Fprintf(&b, "- %s: %s %s (%s)\n", orDash(blk.Party), orDash(blk.SignerName), blk.SignerTitle, status)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Dates (%.2f)\n\n", meta.Dates.Confidence)
	if len(meta.Dates.Dates) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		for _, d := range meta.Dates.Dates {
			primary := ""
			if meta.Dates.PrimaryDate != nil && d == *meta.Dates.PrimaryDate {
				primary = " **(primary)**"
			}
			fmt.Fprintf(&b, "- %s (%s, %q)%s\n", d.NormalizedDate, d.DateType, d.RawDate, primary)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Parties (%.2f)\n\n", meta.Parties.Confidence)
	if len(meta.Parties.Parties) == 0 {
		b.WriteString("None detected.\n\n")
	} else {
		for _, p := range meta.Parties.Parties {
			detail := make([]string, 0, 2)
			if p.Type != "" {
				detail = append(detail, string(p.Type))
			}
			if p.Role != "" {
				detail = append(detail, p.Role)
			}
			suffix := ""
			if len(detail) > 0 {
				suffix = " (" + strings.Join(detail, ", ") + ")"
			}
			fmt.Fprintf(&b, "- %s%s\n", p.Name, suffix)
		}
		if len(meta.Parties.ContractingParties) > 0 {
			fmt.Fprintf(&b, "\nContracting parties: %s\n", strings.Join(meta.Parties.ContractingParties, "; "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Confidence breakdown\n\n")
	for _, stage := range extract.Stages {
		fmt.Fprintf(&b, "- %s: %.2f\n", stage, meta.Confidence.Breakdown[stage])
	}

	if r.includeFooter {
		b.WriteString("\n---\nGenerated by lexmeta. Extracted metadata is a machine judgment, not legal advice.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short result summary to stdout
func (r *Renderer) RenderSummary(meta *model.LegalMetadata) {
	fmt.Printf("\nDocument type: %s (%.2f)\n", meta.DocumentType.Type, meta.DocumentType.Confidence)
	fmt.Printf("Overall confidence: %.2f", meta.Confidence.Overall)
	if meta.Partial {
		fmt.Printf(" [partial]")
	}
	fmt.Println()
	fmt.Printf("Sections: %d (%s)  Signatures: %d blocks / %d parties  Dates: %d  Parties: %d\n",
		len(meta.Sections.Sections), meta.Sections.StructureType,
		len(meta.Signatures.Signatures), meta.Signatures.PartyCount,
		len(meta.Dates.Dates), len(meta.Parties.Parties))
	if meta.Dates.PrimaryDate != nil {
		fmt.Printf("Primary date: %s (%s)\n", meta.Dates.PrimaryDate.NormalizedDate, meta.Dates.PrimaryDate.DateType)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
