package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/lexmeta/internal/model"
	"github.com/ppiankov/lexmeta/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	maxBytes    int64
	noCache     bool
	noFooter    bool
	cacheDir    string
	llmProvider string
	llmModel    string
	callerID    string
	orgID       string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract structured metadata from a single legal document",
	Long: `Extract runs the five extraction stages over one document:
- Classify the document type (contract, pleading, motion, correspondence)
- Identify structural sections and their hierarchy
- Locate signature blocks and count distinct signing parties
- Find dated references and normalize them to ISO-8601
- Identify named parties and their roles

Stages run concurrently; a stage that times out or returns malformed
output degrades to its null result and the record is marked partial.

Example:
  lexmeta extract agreement.txt
  lexmeta extract agreement.txt --json meta.json --md meta.md
  lexmeta extract agreement.html --provider anthropic --model claude-sonnet-4-5`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Output flags
	extractCmd.Flags().StringVar(&outJSON, "json", "metadata.json", "output JSON path")
	extractCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	extractCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Input flags
	extractCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall extraction timeout (per-stage timeouts come from config)")
	extractCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max document bytes to read")
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache (force fresh extraction)")
	extractCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist cached records under this directory")

	// LLM flags
	extractCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, ollama)")
	extractCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "LLM model name")

	// Correlation flags
	extractCmd.Flags().StringVar(&callerID, "caller", "", "caller identifier for diagnostics")
	extractCmd.Flags().StringVar(&orgID, "org", "", "organization identifier for diagnostics")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Extracting: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	loader := pipeline.NewLoader(cfg.Input.MaxBodyBytes)
	doc, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	result, err := p.Extract(ctx, pipeline.Request{
		Document: doc,
		Caller:   callerID,
		Org:      orgID,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if verbose {
		meta := result.Metadata
		fmt.Fprintf(os.Stderr, "✓ Document type: %s (%.2f)\n", meta.DocumentType.Type, meta.DocumentType.Confidence)
		fmt.Fprintf(os.Stderr, "✓ Sections: %d\n", len(meta.Sections.Sections))
		fmt.Fprintf(os.Stderr, "✓ Signature blocks: %d\n", len(meta.Signatures.Signatures))
		fmt.Fprintf(os.Stderr, "✓ Dates: %d\n", len(meta.Dates.Dates))
		fmt.Fprintf(os.Stderr, "✓ Parties: %d\n", len(meta.Parties.Parties))
		if result.FromCache {
			fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
		}
		if result.State == pipeline.StatePartiallyCompleted {
			fmt.Fprintf(os.Stderr, "⚠ Partial record: one or more stages fell back to null results\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(result.Metadata, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildConfig assembles the effective configuration from defaults plus
// the shared CLI flags and provider environment variables
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Input.MaxBodyBytes = maxBytes
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	// Get API key from environment
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
