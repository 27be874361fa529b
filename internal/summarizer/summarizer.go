package summarizer

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"trending_digest/internal/domain"
)

const (
	NoReadmeWhat    = "無法取得 README"
	NoReadmeProblem = "此專案沒有 README 檔案"
	FailedWhat      = "摘要生成失敗"
	parseErrPrefix  = "JSON 解析錯誤: "
)

// Model generates free text for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds generator configuration.
type Config struct {
	MaxDocumentLength int
	// Interval is the minimum spacing between model calls.
	Interval time.Duration
}

// Generator produces structured summaries for trending repositories.
type Generator struct {
	model             Model
	limiter           *rate.Limiter
	maxDocumentLength int
	logger            *slog.Logger
}

// New creates a generator. Model calls are spaced by cfg.Interval.
func New(model Model, cfg Config, logger *slog.Logger) *Generator {
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}

	return &Generator{
		model:             model,
		limiter:           rate.NewLimiter(limit, 1),
		maxDocumentLength: cfg.MaxDocumentLength,
		logger:            logger.With("component", "summarizer"),
	}
}

// Summarize always returns a summary; failures yield a placeholder whose
// Problem carries the reason.
func (g *Generator) Summarize(ctx context.Context, repo *domain.Repository) domain.Summary {
	if !repo.HasReadme() {
		return domain.Summary{
			What:        NoReadmeWhat,
			Problem:     NoReadmeProblem,
			TechStack:   []string{},
			Placeholder: true,
		}
	}

	prompt := buildPrompt(repo.Name, repo.Description, repo.Stars, truncate(*repo.Readme, g.maxDocumentLength))

	if err := g.limiter.Wait(ctx); err != nil {
		return failed(err.Error())
	}

	raw, err := g.model.Generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("summary generation failed", "repo", repo.Name, "error", err)
		return failed(err.Error())
	}

	summary, err := parseResponse(raw)
	if err != nil {
		g.logger.Warn("summary json parse failed", "repo", repo.Name, "error", err)
		g.logger.Debug("raw model output", "repo", repo.Name, "text", raw)
		return failed(parseErrPrefix + err.Error())
	}

	return summary
}

func failed(reason string) domain.Summary {
	return domain.Summary{
		What:        FailedWhat,
		Problem:     reason,
		TechStack:   []string{},
		Placeholder: true,
	}
}
