package summarizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"trending_digest/internal/domain"
)

const maxTechStack = 5

var (
	fencedObjectRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	fenceReplacer     = strings.NewReplacer("```json", "", "```", "")

	errEmptySummary = errors.New("response has neither what nor problem")
)

type summaryPayload struct {
	What      string          `json:"what"`
	Problem   string          `json:"problem"`
	TechStack json.RawMessage `json:"tech_stack"`
}

// parseResponse decodes model output into a summary, tolerating markdown fencing.
func parseResponse(raw string) (domain.Summary, error) {
	text := stripFences(raw)

	var payload *summaryPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.Summary{}, err
	}
	if payload == nil {
		return domain.Summary{}, errors.New("response is null")
	}
	payload.What = strings.TrimSpace(payload.What)
	payload.Problem = strings.TrimSpace(payload.Problem)
	if payload.What == "" && payload.Problem == "" {
		return domain.Summary{}, errEmptySummary
	}

	stack, err := decodeTechStack(payload.TechStack)
	if err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{
		What:      payload.What,
		Problem:   payload.Problem,
		TechStack: stack,
	}, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.Contains(text, "```") {
		return text
	}
	if m := fencedObjectRegex.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return strings.TrimSpace(fenceReplacer.Replace(text))
}

// decodeTechStack accepts a list of strings or a single string.
func decodeTechStack(raw json.RawMessage) ([]string, error) {
	stack := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return stack, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if json.Unmarshal(raw, &single) != nil {
			return nil, fmt.Errorf("tech_stack: %w", err)
		}
		list = []string{single}
	}

	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		stack = append(stack, item)
		if len(stack) == maxTechStack {
			break
		}
	}
	return stack, nil
}
