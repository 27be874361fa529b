package domain

import "time"

// Repository is one ranked entry of the trending listing.
type Repository struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"` // owner/repo
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Language    *string  `json:"language"`
	Stars       int      `json:"stars"`
	TodayStars  int      `json:"today_stars"`
	Readme      *string  `json:"readme,omitempty"`
	Summary     *Summary `json:"summary,omitempty"`
}

// HasReadme reports whether a non-empty document is attached.
func (r *Repository) HasReadme() bool {
	return r.Readme != nil && *r.Readme != ""
}

type Summary struct {
	What      string   `json:"what"`
	Problem   string   `json:"problem"`
	TechStack []string `json:"tech_stack"`

	// Placeholder marks summaries produced by an error path.
	Placeholder bool `json:"-"`
}

// Digest is the persisted record of one run.
type Digest struct {
	Date        string       `json:"date"`
	GeneratedAt time.Time    `json:"generated_at"`
	Repos       []Repository `json:"repos"`
}
