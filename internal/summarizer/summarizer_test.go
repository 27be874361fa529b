package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"trending_digest/internal/config"
	"trending_digest/internal/domain"
)

type stubModel struct {
	prompts []string
	calls   []time.Time
	reply   string
	err     error
}

func (m *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.calls = append(m.calls, time.Now())
	return m.reply, m.err
}

type GeneratorTestSuite struct {
	suite.Suite
	model     *stubModel
	generator *Generator
	logger    *slog.Logger
}

func (s *GeneratorTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.model = &stubModel{}
	s.generator = New(s.model, Config{MaxDocumentLength: 15000}, s.logger)
}

func TestGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

func repoWithReadme(readme string) *domain.Repository {
	return &domain.Repository{
		Rank:        1,
		Name:        "acme/rocket",
		Description: "Launch things",
		Stars:       12345,
		Readme:      &readme,
	}
}

func (s *GeneratorTestSuite) TestSummarize_NoReadmeSkipsModel() {
	summary := s.generator.Summarize(context.Background(), &domain.Repository{Name: "acme/empty"})

	s.Equal(NoReadmeWhat, summary.What)
	s.Equal(NoReadmeProblem, summary.Problem)
	s.NotNil(summary.TechStack)
	s.Empty(summary.TechStack)
	s.True(summary.Placeholder)
	s.Empty(s.model.prompts)
}

func (s *GeneratorTestSuite) TestSummarize_EmptyReadmeSkipsModel() {
	summary := s.generator.Summarize(context.Background(), repoWithReadme(""))

	s.Equal(NoReadmeWhat, summary.What)
	s.Empty(s.model.prompts)
}

func (s *GeneratorTestSuite) TestSummarize_FencedResponse() {
	s.model.reply = "```json\n{\"what\":\"x\",\"problem\":\"y\",\"tech_stack\":[\"a\"]}\n```"

	summary := s.generator.Summarize(context.Background(), repoWithReadme("# Rocket"))

	s.Equal(domain.Summary{What: "x", Problem: "y", TechStack: []string{"a"}}, summary)
}

func (s *GeneratorTestSuite) TestSummarize_PromptEmbedsRecordFields() {
	s.model.reply = `{"what":"x","problem":"y","tech_stack":[]}`

	s.generator.Summarize(context.Background(), repoWithReadme("# Rocket docs"))

	s.Require().Len(s.model.prompts, 1)
	prompt := s.model.prompts[0]
	s.Contains(prompt, "專案名稱: acme/rocket")
	s.Contains(prompt, "專案描述: Launch things")
	s.Contains(prompt, "Stars: 12345")
	s.Contains(prompt, "README:\n# Rocket docs")
	s.Contains(prompt, "tech_stack")
	s.NotContains(prompt, truncationMarker)
}

func (s *GeneratorTestSuite) TestSummarize_TruncatesLongReadme() {
	s.model.reply = `{"what":"x","problem":"y","tech_stack":[]}`
	readme := strings.Repeat("a", 20000)

	s.generator.Summarize(context.Background(), repoWithReadme(readme))

	s.Require().Len(s.model.prompts, 1)
	prompt := s.model.prompts[0]
	s.Contains(prompt, strings.Repeat("a", 15000)+truncationMarker)
	s.NotContains(prompt, strings.Repeat("a", 15001))
}

func (s *GeneratorTestSuite) TestSummarize_MalformedJSON() {
	s.model.reply = `{"what": "x", "problem": `

	summary := s.generator.Summarize(context.Background(), repoWithReadme("# Rocket"))

	s.Equal(FailedWhat, summary.What)
	s.True(strings.HasPrefix(summary.Problem, parseErrPrefix))
	s.Greater(len(summary.Problem), len(parseErrPrefix))
	s.Empty(summary.TechStack)
	s.True(summary.Placeholder)
}

func (s *GeneratorTestSuite) TestSummarize_MissingKeys() {
	for _, reply := range []string{`{}`, `null`, `{"foo":1}`} {
		s.model.reply = reply

		summary := s.generator.Summarize(context.Background(), repoWithReadme("# Rocket"))

		s.Equal(FailedWhat, summary.What, "reply %q", reply)
		s.True(strings.HasPrefix(summary.Problem, parseErrPrefix), "reply %q", reply)
		s.Empty(summary.TechStack)
		s.True(summary.Placeholder)
	}
}

func (s *GeneratorTestSuite) TestSummarize_ModelError() {
	s.model.err = errors.New("googleapi: Error 429: Resource has been exhausted")

	summary := s.generator.Summarize(context.Background(), repoWithReadme("# Rocket"))

	s.Equal(FailedWhat, summary.What)
	s.Equal("googleapi: Error 429: Resource has been exhausted", summary.Problem)
	s.Empty(summary.TechStack)
	s.True(summary.Placeholder)
}

func (s *GeneratorTestSuite) TestSummarize_SpacesModelCalls() {
	interval := 60 * time.Millisecond
	generator := New(s.model, Config{MaxDocumentLength: 15000, Interval: interval}, s.logger)
	s.model.reply = `{"what":"x","problem":"y","tech_stack":[]}`

	for i := 0; i < 3; i++ {
		generator.Summarize(context.Background(), repoWithReadme("# Rocket"))
	}

	s.Require().Len(s.model.calls, 3)
	for i := 1; i < len(s.model.calls); i++ {
		// rate.Limiter may release a few ms early on coarse timers.
		s.GreaterOrEqual(s.model.calls[i].Sub(s.model.calls[i-1]), interval-10*time.Millisecond)
	}
}

func (s *GeneratorTestSuite) TestSummarize_CancelledWhilePacing() {
	generator := New(s.model, Config{Interval: time.Hour}, s.logger)
	s.model.reply = `{"what":"x","problem":"y","tech_stack":[]}`

	first := generator.Summarize(context.Background(), repoWithReadme("# Rocket"))
	s.False(first.Placeholder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	second := generator.Summarize(ctx, repoWithReadme("# Rocket"))

	s.True(second.Placeholder)
	s.NotEmpty(second.Problem)
	s.Len(s.model.calls, 1)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Summary
	}{
		{
			name: "plain json",
			raw:  `  {"what":"w","problem":"p","tech_stack":["Go","Redis"]}  `,
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{"Go", "Redis"}},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"what\":\"w\",\"problem\":\"p\",\"tech_stack\":[]}\n```",
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{}},
		},
		{
			name: "fence with surrounding prose",
			raw:  "Here you go:\n```json\n{\"what\":\"w\",\"problem\":\"p\",\"tech_stack\":[\"Rust\"]}\n```\nEnjoy",
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{"Rust"}},
		},
		{
			name: "unterminated fence falls back to stripping",
			raw:  "```json {\"what\":\"w\",\"problem\":\"p\",\"tech_stack\":[\"Go\"]}",
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{"Go"}},
		},
		{
			name: "string tech stack",
			raw:  `{"what":"w","problem":"p","tech_stack":"Python"}`,
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{"Python"}},
		},
		{
			name: "missing tech stack",
			raw:  `{"what":"w","problem":"p"}`,
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{}},
		},
		{
			name: "tech stack capped",
			raw:  `{"what":"w","problem":"p","tech_stack":["a","b","","c","d","e","f"]}`,
			want: domain.Summary{What: "w", Problem: "p", TechStack: []string{"a", "b", "c", "d", "e"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json at all",
		"```json\n{bad\n```",
		`["a","b"]`,
		`{"what":"w","problem":"p","tech_stack":[1,2]}`,
		`{}`,
		`null`,
		"```json\nnull\n```",
		`{"foo":1}`,
		`{"what":"  ","problem":"","tech_stack":["Go"]}`,
	} {
		_, err := parseResponse(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc"+truncationMarker, truncate("abcdef", 3))
	assert.Equal(t, "中文"+truncationMarker, truncate("中文字元", 2), "counts characters, not bytes")
	assert.Equal(t, "abcdef", truncate("abcdef", 0))
}

func TestNewGeminiModel_MissingKey(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), GeminiConfig{Model: "gemini-2.5-flash"})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingCredential)
}

func TestResponseText(t *testing.T) {
	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"what":`), genai.Text(`"x"}`)}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"what":"x"}`, text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}
