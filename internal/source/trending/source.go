package trending

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"trending_digest/internal/domain"
)

const SourceID = "github-trending"

// Config holds trending source configuration.
type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Source scrapes the GitHub trending page.
type Source struct {
	httpClient *http.Client
	url        string
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// New creates a new trending source.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid trending url: %q", cfg.URL)
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:       cfg.URL,
		baseURL:   u.Scheme + "://" + u.Host,
		userAgent: cfg.UserAgent,
		logger:    logger.With("source", SourceID),
	}, nil
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// FetchRepositories downloads the listing and parses at most limit repositories.
func (s *Source) FetchRepositories(ctx context.Context, limit int) ([]domain.Repository, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/html")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	repos, err := Parse(resp.Body, s.baseURL, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("parsed trending page", "repositories", len(repos), "limit", limit)

	return repos, nil
}
