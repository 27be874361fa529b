package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trending_digest/internal/domain"
)

const dateLayout = "2006-01-02"

// DigestService runs the scrape, readme, summarize and deliver pipeline once per call.
type DigestService struct {
	source     TrendingSource
	readmes    ReadmeSource
	summarizer Summarizer
	store      DigestStore
	history    HistoryStore
	publisher  Publisher
	notifiers  []Notifier
	limit      int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures optional outputs of a DigestService.
type Option func(*DigestService)

func WithHistory(h HistoryStore) Option {
	return func(s *DigestService) { s.history = h }
}

func WithPublisher(p Publisher) Option {
	return func(s *DigestService) { s.publisher = p }
}

func WithNotifiers(n ...Notifier) Option {
	return func(s *DigestService) { s.notifiers = append(s.notifiers, n...) }
}

func WithClock(now func() time.Time) Option {
	return func(s *DigestService) { s.now = now }
}

func NewDigestService(
	source TrendingSource,
	readmes ReadmeSource,
	summarizer Summarizer,
	store DigestStore,
	limit int,
	logger *slog.Logger,
	opts ...Option,
) *DigestService {
	s := &DigestService{
		source:     source,
		readmes:    readmes,
		summarizer: summarizer,
		store:      store,
		limit:      limit,
		now:        time.Now,
		logger:     logger.With("source", source.ID()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes one batch. Per-repository failures degrade that repository's
// summary; only a failed listing fetch or a failed digest save is returned.
func (s *DigestService) Run(ctx context.Context) (*domain.RunStats, error) {
	startTime := s.now()
	date := startTime.Format(dateLayout)
	s.logger.Info("starting digest run", "date", date, "limit", s.limit)

	repos, err := s.source.FetchRepositories(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	stats := &domain.RunStats{Date: date, Found: len(repos)}
	for _, r := range repos {
		s.logger.Info("trending repository", "rank", r.Rank, "repo", r.Name, "stars", r.Stars, "today_stars", r.TodayStars)
	}

	for i := range repos {
		repo := &repos[i]
		if text, ok := s.readmes.FetchReadme(ctx, repo.Name); ok && text != "" {
			repo.Readme = &text
			stats.WithReadme++
			s.logger.Info("fetched readme", "repo", repo.Name, "chars", len([]rune(text)))
		}
	}

	for i := range repos {
		repo := &repos[i]
		summary := s.summarizer.Summarize(ctx, repo)
		repo.Summary = &summary
		if summary.Placeholder {
			stats.Placeholders++
		} else {
			stats.Summarized++
		}
		s.logger.Info("summarized repository", "repo", repo.Name, "what", summary.What, "placeholder", summary.Placeholder)
	}

	digest := &domain.Digest{
		Date:        date,
		GeneratedAt: s.now(),
		Repos:       repos,
	}

	path, err := s.store.Save(ctx, digest)
	if err != nil {
		return stats, fmt.Errorf("save digest: %w", err)
	}
	s.logger.Info("saved digest", "path", path)

	if s.history != nil {
		if err := s.history.SaveDigest(ctx, digest); err != nil {
			stats.Errors++
			s.logger.Error("failed to store digest history", "error", err)
		} else {
			s.countReturning(ctx, repos, stats)
		}
	}

	if s.publisher != nil {
		for i := range repos {
			if err := s.publisher.Publish(ctx, &repos[i], date); err != nil {
				stats.Errors++
				s.logger.Error("failed to publish repository", "repo", repos[i].Name, "error", err)
			}
		}
	}

	for _, n := range s.notifiers {
		if err := n.Notify(ctx, digest); err != nil {
			stats.Errors++
			s.logger.Warn("failed to send digest", "notifier", n.Name(), "error", err)
			continue
		}
		s.logger.Info("digest sent", "notifier", n.Name())
	}

	stats.Duration = s.now().Sub(startTime)

	s.logger.Info("digest run completed",
		"found", stats.Found,
		"with_readme", stats.WithReadme,
		"summarized", stats.Summarized,
		"placeholders", stats.Placeholders,
		"returning", stats.Returning,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// countReturning logs repositories already listed by an earlier stored digest.
func (s *DigestService) countReturning(ctx context.Context, repos []domain.Repository, stats *domain.RunStats) {
	for i := range repos {
		n, err := s.history.CountAppearances(ctx, repos[i].Name)
		if err != nil {
			s.logger.Warn("failed to count appearances", "repo", repos[i].Name, "error", err)
			continue
		}
		if n > 1 {
			stats.Returning++
			s.logger.Info("returning repository", "repo", repos[i].Name, "appearances", n)
		}
	}
}
