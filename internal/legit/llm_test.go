package legit

import (
	"strings"
	"testing"

	"ghostcheck-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `{
  "score": 82,
  "concerns": ["salary undisclosed"],
  "positive_signals": ["hosted on greenhouse", "detailed responsibilities"],
  "recommendation": "APPROVE",
  "rationale": "Looks like a normal engineering role."
}`

func TestParseAssessment(t *testing.T) {
	a, err := parseAssessment(sampleReply)
	require.NoError(t, err)
	assert.Equal(t, 82, a.Score)
	assert.Equal(t, []string{"salary undisclosed"}, a.Concerns)
	assert.Len(t, a.PositiveSignals, 2)
	assert.Equal(t, "APPROVE", a.Recommendation)
}

func TestParseAssessmentStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + sampleReply + "\n```"
	a, err := parseAssessment(fenced)
	require.NoError(t, err)
	assert.Equal(t, 82, a.Score)

	bare := "```\n" + sampleReply + "\n```"
	a, err = parseAssessment(bare)
	require.NoError(t, err)
	assert.Equal(t, 82, a.Score)
}

func TestParseAssessmentRejectsGarbage(t *testing.T) {
	_, err := parseAssessment("Sure! Here is my assessment of the posting:")
	assert.Error(t, err)
}

func TestCleanMarkdownJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownJSON("  {\"a\":1}  "))
}

func TestBuildPrompt(t *testing.T) {
	p := domain.Posting{
		Title:       "Junior Developer",
		Company:     "Acme",
		LocationRaw: "Berlin",
		SalaryMin:   70000,
		SalaryMax:   90000,
		Description: "Build things.",
	}

	prompt := buildPrompt(p)
	assert.Contains(t, prompt, "Junior Developer")
	assert.Contains(t, prompt, "Acme")
	assert.Contains(t, prompt, "$70000 - $90000")
	assert.Contains(t, prompt, "Build things.")
}

func TestBuildPromptTruncatesLongDescriptions(t *testing.T) {
	p := domain.Posting{
		Title:       "Dev",
		Company:     "Acme",
		Description: strings.Repeat("x", maxPromptDescription+5000),
	}
	assert.LessOrEqual(t, len(buildPrompt(p)), maxPromptDescription+len(assessPrompt)+100)
}

func TestBuildPromptUndisclosedSalary(t *testing.T) {
	prompt := buildPrompt(domain.Posting{Title: "Dev", Company: "Acme"})
	assert.Contains(t, prompt, "undisclosed")
}
