package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"trending_digest/internal/domain"
)

// DigestStore keeps a history of daily digests. Re-running a date replaces its rows.
type DigestStore struct {
	db   *sqlx.DB
	tags *TechTagStore
	tx   *Transactor
}

func NewDigestStore(db *sqlx.DB) *DigestStore {
	return &DigestStore{
		db:   db,
		tags: NewTechTagStore(db),
		tx:   NewTransactor(db),
	}
}

func (s *DigestStore) SaveDigest(ctx context.Context, digest *domain.Digest) error {
	return s.tx.InTx(ctx, func(txCtx context.Context) error {
		digestID, err := s.upsertDigest(txCtx, digest)
		if err != nil {
			return fmt.Errorf("upsert digest: %w", err)
		}

		if _, err := querier(txCtx, s.db).ExecContext(txCtx,
			"DELETE FROM digest_repositories WHERE digest_id = $1", digestID,
		); err != nil {
			return fmt.Errorf("clear repositories: %w", err)
		}

		for i := range digest.Repos {
			repo := &digest.Repos[i]

			repoID, err := s.insertRepository(txCtx, digestID, repo)
			if err != nil {
				return fmt.Errorf("insert repository %s: %w", repo.Name, err)
			}

			if repo.Summary == nil || len(repo.Summary.TechStack) == 0 {
				continue
			}

			tagIDs, err := s.tags.UpsertLabels(txCtx, repo.Summary.TechStack)
			if err != nil {
				return fmt.Errorf("upsert tech tags: %w", err)
			}

			if err := s.tags.LinkToRepository(txCtx, repoID, tagIDs); err != nil {
				return fmt.Errorf("link tech tags: %w", err)
			}
		}

		return nil
	})
}

func (s *DigestStore) upsertDigest(ctx context.Context, digest *domain.Digest) (int64, error) {
	query := `
		INSERT INTO digests (date, generated_at, repo_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			repo_count = EXCLUDED.repo_count
		RETURNING id`

	var id int64
	err := sqlx.GetContext(ctx, querier(ctx, s.db), &id, query,
		digest.Date, digest.GeneratedAt, len(digest.Repos))
	return id, err
}

func (s *DigestStore) insertRepository(ctx context.Context, digestID int64, repo *domain.Repository) (int64, error) {
	query := `
		INSERT INTO digest_repositories (
			digest_id, rank, name, url, description, language, stars, today_stars,
			has_readme, what, problem, placeholder
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id`

	var what, problem string
	var placeholder bool
	if repo.Summary != nil {
		what, problem, placeholder = repo.Summary.What, repo.Summary.Problem, repo.Summary.Placeholder
	}

	var id int64
	err := sqlx.GetContext(ctx, querier(ctx, s.db), &id, query,
		digestID,
		repo.Rank,
		repo.Name,
		repo.URL,
		repo.Description,
		repo.Language,
		repo.Stars,
		repo.TodayStars,
		repo.HasReadme(),
		what,
		problem,
		placeholder,
	)
	return id, err
}

// CountAppearances returns how many stored digests listed the repository.
func (s *DigestStore) CountAppearances(ctx context.Context, name string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, querier(ctx, s.db), &n,
		"SELECT COUNT(DISTINCT digest_id) FROM digest_repositories WHERE name = $1", name)
	return n, err
}
