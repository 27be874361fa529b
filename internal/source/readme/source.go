package readme

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	SourceID   = "github-readme"
	apiVersion = "2022-11-28"
	userAgent  = "github-daily-select"
)

// ErrNotFound is returned when the repository has no README.
var ErrNotFound = errors.New("readme not found")

// Config holds README source configuration.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source fetches raw README documents from the GitHub REST API.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new README source.
func New(cfg Config, logger *slog.Logger) *Source {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
}

// FetchReadme returns the README text of repo ("owner/name").
// The boolean is false when no document is available; failures are logged, not returned.
func (s *Source) FetchReadme(ctx context.Context, repo string) (string, bool) {
	text, err := s.fetch(ctx, repo)
	switch {
	case err == nil && text == "":
		s.logger.Info("repository readme is empty", "repo", repo)
	case err == nil:
		return text, true
	case errors.Is(err, ErrNotFound):
		s.logger.Info("repository has no readme", "repo", repo)
	default:
		s.logger.Warn("failed to fetch readme", "repo", repo, "error", err)
	}
	return "", false
}

func (s *Source) fetch(ctx context.Context, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/readme", s.baseURL, repo)

	var text string
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		text, err = s.doRequest(ctx, url)
		if err == nil || errors.Is(err, ErrNotFound) {
			return text, err
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"repo", repo,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if s.maxAttempts > 1 {
		return "", fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
	}
	return "", err
}

func (s *Source) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.raw+json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}
