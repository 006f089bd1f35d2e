package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenfin/pulse/internal/llm"
	"github.com/lumenfin/pulse/internal/model"
	"github.com/lumenfin/pulse/internal/service"
)

// TextGenerator produces model text for a prompt. Satisfied by
// llm.FallbackChain; narrowed to an interface so tests can stub it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine orchestrates the analysis pipeline: prompt construction, rate
// limiting, the provider fallback chain, response parsing, assembly, and
// the deterministic offline fallback.
type Engine struct {
	storage   service.Storage
	generator TextGenerator
	limiter   *llm.RateLimiter
	prompts   *PromptBuilder
	logger    *slog.Logger
	opts      AssembleOptions
}

// Deps holds the engine's collaborators.
type Deps struct {
	Storage   service.Storage
	Generator TextGenerator
	Limiter   *llm.RateLimiter
	Logger    *slog.Logger
	// RequireContent controls the incomplete-response threshold; see
	// AssembleOptions.
	RequireContent bool
}

// NewEngine creates an analysis engine.
func NewEngine(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:   deps.Storage,
		generator: deps.Generator,
		limiter:   deps.Limiter,
		prompts:   NewPromptBuilder(),
		logger:    logger,
		opts:      AssembleOptions{RequireContent: deps.RequireContent},
	}
}

// Analyze loads the financial snapshot and produces an analysis result.
// Only a storage read failure surfaces as an error; every AI-path failure
// degrades to the offline result instead.
func (e *Engine) Analyze(ctx context.Context) (*Result, error) {
	snapshot, err := e.storage.GetSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load financial snapshot: %w", err)
	}
	return e.AnalyzeSnapshot(ctx, snapshot), nil
}

// AnalyzeSnapshot runs the pipeline over an already-loaded snapshot. It
// always returns a populated result; when the AI path fails the result is
// the offline computation with Degraded set.
func (e *Engine) AnalyzeSnapshot(ctx context.Context, snapshot *model.Snapshot) *Result {
	prompt := e.prompts.Build(snapshot)

	if err := e.limiter.CheckAndRecord(); err != nil {
		e.logger.Warn("analysis rate limited, using offline result", "error", err)
		return e.finish(ComputeOffline(snapshot))
	}

	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("all AI providers failed, using offline result", "error", err)
		return e.finish(ComputeOffline(snapshot))
	}

	parsed, err := ParseModelResponse(text)
	if err != nil {
		e.logger.Warn("model response unparseable, using offline result", "error", err)
		e.logger.Debug("raw model response", "response", text)
		return e.finish(ComputeOffline(snapshot))
	}

	result, err := Assemble(parsed, snapshot, e.opts)
	if err != nil {
		e.logger.Warn("model response incomplete, using offline result", "error", err)
		return e.finish(ComputeOffline(snapshot))
	}

	e.logger.Info("analysis complete",
		"health_score", result.HealthScore,
		"insights", len(result.Insights),
		"recommendations", len(result.Recommendations))
	return e.finish(result)
}

// finish stamps identity and generation time on the result.
func (e *Engine) finish(result *Result) *Result {
	result.ID = uuid.New().String()
	result.GeneratedAt = time.Now()
	return result
}
