package summarizer

import "fmt"

const truncationMarker = "\n\n... (內容已截斷)"

const promptTemplate = `你是一個技術文章摘要專家。請根據以下 GitHub 專案的 README，用繁體中文生成摘要。

請以 JSON 格式回傳，包含以下欄位：
- what: 這個專案是什麼（一句話，30字以內）
- problem: 它解決什麼問題（2-3句話）
- tech_stack: 使用的主要技術棧（陣列，最多5個）

只回傳 JSON，不要有其他文字。

專案名稱: %s
專案描述: %s
Stars: %d

README:
%s
`

func buildPrompt(name, description string, stars int, readme string) string {
	return fmt.Sprintf(promptTemplate, name, description, stars, readme)
}

// truncate limits readme to maxLen characters, appending a marker when cut.
func truncate(readme string, maxLen int) string {
	if maxLen <= 0 {
		return readme
	}
	runes := []rune(readme)
	if len(runes) <= maxLen {
		return readme
	}
	return string(runes[:maxLen]) + truncationMarker
}
