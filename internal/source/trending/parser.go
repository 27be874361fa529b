package trending

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trending_digest/internal/domain"
)

const (
	entrySelector       = "article.Box-row"
	nameSelector        = "h2 a"
	descriptionSelector = "p.col-9"
	languageSelector    = `span[itemprop="programmingLanguage"]`
	todayStarsSelector  = "span.d-inline-block.float-sm-right"
)

// Parse extracts at most limit repositories from trending page markup, in page order.
// Entries without a name link are skipped; ranks stay contiguous.
func Parse(r io.Reader, baseURL string, limit int) ([]domain.Repository, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var repos []domain.Repository
	if limit <= 0 {
		return repos, nil
	}

	baseURL = strings.TrimRight(baseURL, "/")
	doc.Find(entrySelector).EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		href, ok := extractHref(entry)
		if !ok {
			return true
		}

		repos = append(repos, domain.Repository{
			Rank:        len(repos) + 1,
			Name:        strings.TrimPrefix(href, "/"),
			URL:         baseURL + href,
			Description: extractDescription(entry),
			Language:    extractLanguage(entry),
			Stars:       extractStars(entry, href),
			TodayStars:  extractTodayStars(entry),
		})

		return len(repos) < limit
	})

	return repos, nil
}

func extractHref(entry *goquery.Selection) (string, bool) {
	link := entry.Find(nameSelector).First()
	if link.Length() == 0 {
		return "", false
	}

	href := strings.TrimSpace(link.AttrOr("href", ""))
	if strings.Trim(href, "/") == "" {
		return "", false
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}

	return strings.TrimRight(href, "/"), true
}

func extractDescription(entry *goquery.Selection) string {
	return collapse(entry.Find(descriptionSelector).First().Text())
}

func extractLanguage(entry *goquery.Selection) *string {
	node := entry.Find(languageSelector).First()
	if node.Length() == 0 {
		return nil
	}

	lang := collapse(node.Text())
	if lang == "" {
		return nil
	}
	return &lang
}

func extractStars(entry *goquery.Selection, href string) int {
	link := entry.Find(fmt.Sprintf(`a[href="%s/stargazers"]`, href)).First()
	if link.Length() == 0 {
		return 0
	}
	return ParseAbbreviatedCount(link.Text())
}

// extractTodayStars reads "1,234 stars today" style text; only the leading token counts.
func extractTodayStars(entry *goquery.Selection) int {
	node := entry.Find(todayStarsSelector).First()
	if node.Length() == 0 {
		return 0
	}

	fields := strings.Fields(strings.ReplaceAll(node.Text(), ",", ""))
	if len(fields) == 0 {
		return 0
	}
	return ParseAbbreviatedCount(fields[0])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
