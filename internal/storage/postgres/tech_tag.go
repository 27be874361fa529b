package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

type TechTagStore struct {
	db *sqlx.DB
}

func NewTechTagStore(db *sqlx.DB) *TechTagStore {
	return &TechTagStore{db: db}
}

// UpsertLabels ensures a tag row per label and returns their ids in label order.
func (s *TechTagStore) UpsertLabels(ctx context.Context, labels []string) ([]int64, error) {
	labels = uniqueLabels(labels)
	if len(labels) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO tech_tags (label) VALUES ")
	valueArgs := make([]interface{}, 0, len(labels))

	for i, label := range labels {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(")")
		valueArgs = append(valueArgs, label)
	}
	sb.WriteString(" ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label RETURNING id, label")

	rows, err := querier(ctx, s.db).QueryxContext(ctx, sb.String(), valueArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byLabel := make(map[string]int64, len(labels))
	for rows.Next() {
		var id int64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		byLabel[label] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(labels))
	for _, label := range labels {
		ids = append(ids, byLabel[label])
	}
	return ids, nil
}

// LinkToRepository replaces the repository's tags, keeping tagIDs order as position.
func (s *TechTagStore) LinkToRepository(ctx context.Context, repositoryID int64, tagIDs []int64) error {
	exec := querier(ctx, s.db)

	_, err := exec.ExecContext(ctx,
		"DELETE FROM repository_tech_tags WHERE repository_id = $1",
		repositoryID,
	)
	if err != nil {
		return err
	}

	if len(tagIDs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO repository_tech_tags (repository_id, tag_id, position) VALUES ")
	valueArgs := make([]interface{}, 0, len(tagIDs)*2+1)
	valueArgs = append(valueArgs, repositoryID)

	for i, tagID := range tagIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i*2 + 2))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*2 + 3))
		sb.WriteString(")")
		valueArgs = append(valueArgs, tagID, i)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	_, err = exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
