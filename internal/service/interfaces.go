package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"trending_digest/internal/domain"
)

type TrendingSource interface {
	ID() string
	FetchRepositories(ctx context.Context, limit int) ([]domain.Repository, error)
}

type ReadmeSource interface {
	FetchReadme(ctx context.Context, repo string) (string, bool)
}

type Summarizer interface {
	Summarize(ctx context.Context, repo *domain.Repository) domain.Summary
}

type DigestStore interface {
	Save(ctx context.Context, digest *domain.Digest) (string, error)
}

type HistoryStore interface {
	SaveDigest(ctx context.Context, digest *domain.Digest) error
	CountAppearances(ctx context.Context, name string) (int, error)
}

type Publisher interface {
	Publish(ctx context.Context, repo *domain.Repository, date string) error
	Close() error
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, digest *domain.Digest) error
}
