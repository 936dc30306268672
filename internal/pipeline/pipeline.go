// Package pipeline orchestrates one legal-metadata extraction: it
// normalizes the document text, fans out the five independent
// extraction stages, waits for all of them to settle, aggregates
// confidence, and returns the composed record. One invocation handles
// exactly one document; concurrent invocations share no mutable state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/lexmeta/internal/cache"
	"github.com/ppiankov/lexmeta/internal/extract"
	"github.com/ppiankov/lexmeta/internal/llm"
	"github.com/ppiankov/lexmeta/internal/model"
	"github.com/ppiankov/lexmeta/internal/normalize"
	"github.com/ppiankov/lexmeta/internal/score"
)

// State tracks one invocation through its lifecycle. No terminal state
// re-enters running.
type State string

const (
	StateCreated            State = "created"
	StateRunning            State = "running"
	StateCompleted          State = "completed"
	StatePartiallyCompleted State = "partially_completed"
	StateFailed             State = "failed"
)

// Request carries one document plus the per-invocation correlation
// context. Caller and Org feed diagnostics only, never extraction.
type Request struct {
	Document model.Document
	Caller   string
	Org      string
}

// Result is the outcome of one invocation
type Result struct {
	Metadata  *model.LegalMetadata
	State     State
	FromCache bool
}

// Pipeline runs extractions. It is stateless between invocations:
// configuration is read-only and the cache is safe for concurrent use.
type Pipeline struct {
	extractor  *extract.Extractor
	aggregator *score.Aggregator
	renderer   *Renderer
	cache      cache.Cache
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration, constructing the
// LLM provider named there
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return NewWithProvider(cfg, provider), nil
}

// NewWithProvider creates a pipeline around an existing provider.
// Tests use this to substitute a deterministic stub.
func NewWithProvider(cfg *model.Config, provider llm.Provider) *Pipeline {
	limited := llm.NewRateLimited(provider, cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)

	var c cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	return &Pipeline{
		extractor:  extract.New(limited, cfg.LLM.Model, cfg.LLM.MaxTokens),
		aggregator: score.NewAggregator(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		cache:      c,
		config:     cfg,
	}
}

// Extract runs the full pipeline over one document.
//
// The caller always receives either a fatal error (empty document,
// cancellation) or a complete record: low confidence and partial
// completion are data, not errors.
func (p *Pipeline) Extract(ctx context.Context, req Request) (*Result, error) {
	doc := req.Document

	// Created -> Failed: the single fatal precondition
	text, err := normalize.Normalize(doc.Content, doc.MimeType)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", doc.Filename, err)
	}

	// Created -> Running
	invocationID := uuid.New().String()

	if p.cache != nil {
		if data, found := p.cache.Get(cache.Key(text)); found {
			var meta model.LegalMetadata
			if err := json.Unmarshal(data, &meta); err == nil {
				if p.config.Output.Verbose {
					fmt.Fprintf(os.Stderr, "invocation %s: cache hit for %s\n", invocationID, doc.Filename)
				}
				return &Result{Metadata: &meta, State: StateCompleted, FromCache: true}, nil
			}
		}
	}

	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "invocation %s: extracting %s (%d chars, caller=%q org=%q)\n",
			invocationID, doc.Filename, normalize.Length(text), req.Caller, req.Org)
	}

	// Fan-out: five mutually independent stages, each with its own
	// timeout and its own copy of the text. Aggregation below is the
	// single synchronization point.
	var (
		docType    model.DocumentTypeResult
		sections   model.SectionResult
		signatures model.SignatureResult
		dates      model.DateResult
		parties    model.PartyResult
	)
	stageErrs := make([]error, len(extract.Stages))

	var wg sync.WaitGroup
	runStage := func(slot int, stage string, fn func(context.Context) error) {
		defer wg.Done()
		stageCtx, cancel := context.WithTimeout(ctx, p.config.Stages.For(stage))
		defer cancel()
		stageErrs[slot] = fn(stageCtx)
	}

	wg.Add(5)
	go runStage(0, extract.StageDocumentType, func(sc context.Context) error {
		var err error
		docType, err = p.extractor.DocumentType(sc, text)
		return err
	})
	go runStage(1, extract.StageSections, func(sc context.Context) error {
		var err error
		sections, err = p.extractor.Sections(sc, text)
		return err
	})
	go runStage(2, extract.StageSignatures, func(sc context.Context) error {
		var err error
		signatures, err = p.extractor.Signatures(sc, text)
		return err
	})
	go runStage(3, extract.StageDates, func(sc context.Context) error {
		var err error
		dates, err = p.extractor.Dates(sc, text)
		return err
	})
	go runStage(4, extract.StageParties, func(sc context.Context) error {
		var err error
		parties, err = p.extractor.Parties(sc, text)
		return err
	})
	wg.Wait()

	// Whole-pipeline cancellation discards partial results
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A stage error at this point means timeout/unavailability; the
	// stage already returned its documented null result, so record the
	// substitution and continue
	partial := false
	for i, stage := range extract.Stages {
		if stageErrs[i] != nil {
			partial = true
			fmt.Fprintf(os.Stderr, "invocation %s: stage %s fell back to null result: %v\n",
				invocationID, stage, stageErrs[i])
		}
	}

	meta := &model.LegalMetadata{
		InvocationID: invocationID,
		SourceFile:   doc.Filename,
		DocumentType: docType,
		Sections:     sections,
		Signatures:   signatures,
		Dates:        dates,
		Parties:      parties,
		Partial:      partial,
		ExtractedAt:  time.Now().UTC(),
	}
	p.aggregator.Aggregate(meta)

	state := StateCompleted
	if partial {
		state = StatePartiallyCompleted
	}

	// Cache only fully completed records; a partial one should be
	// retried fresh next time
	if p.cache != nil && !partial {
		if data, err := json.Marshal(meta); err == nil {
			_ = p.cache.Set(cache.Key(text), data, p.config.Cache.TTL)
		}
	}

	return &Result{Metadata: meta, State: state}, nil
}

// RenderReport renders the record to the specified outputs
func (p *Pipeline) RenderReport(meta *model.LegalMetadata, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(meta, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(meta, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(meta)

	return nil
}
