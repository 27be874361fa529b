package email

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"trending_digest/internal/domain"
)

const (
	dateToken  = "{{DATE}}"
	reposToken = "{{REPOS}}"
)

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>GitHub Daily Select</title>
</head>
<body>
    <h1>GitHub Daily Select</h1>
    <p>{{DATE}}</p>
    {{REPOS}}
</body>
</html>
`

// LoadTemplate reads the template at path, falling back to a built-in one when it is missing.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultTemplate, nil
	}
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}

// Render fills the date and repository tokens of tmpl.
func Render(tmpl string, digest *domain.Digest) string {
	var sb strings.Builder
	for i := range digest.Repos {
		writeCard(&sb, &digest.Repos[i])
	}

	return strings.NewReplacer(
		dateToken, html.EscapeString(digest.Date),
		reposToken, sb.String(),
	).Replace(tmpl)
}

func writeCard(sb *strings.Builder, repo *domain.Repository) {
	summary := repo.Summary
	if summary == nil {
		summary = &domain.Summary{What: "No description available."}
	}

	url := repo.URL
	if url == "" {
		url = "#"
	}

	fmt.Fprintf(sb, `
        <div class="repo-card">
            <div class="repo-header">
                <span class="rank">#%d</span>
                <a href="%s" class="repo-name">%s</a>
                <span class="stars">★ %s</span>
            </div>
            <div class="description">%s</div>
            <div class="problem-statement">%s</div>
            <div class="tech-stack">`,
		repo.Rank,
		html.EscapeString(url),
		html.EscapeString(repo.Name),
		humanize.Comma(int64(repo.Stars)),
		html.EscapeString(summary.What),
		html.EscapeString(summary.Problem),
	)

	for i, tech := range summary.TechStack {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(sb, `<span class="tag">%s</span>`, html.EscapeString(tech))
	}

	sb.WriteString("</div>\n        </div>\n")
}
