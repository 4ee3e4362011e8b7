package legit

import (
	"context"
	"strings"
	"testing"

	"ghostcheck-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// neutralPosting trips no rule in either direction: description between
// 100 and 500 chars, real company, no salary, no ATS host.
func neutralPosting() domain.Posting {
	return domain.Posting{
		Title:       "Backend Engineer",
		Company:     "Acme Corp",
		ApplyURL:    "https://careers.acme.example/jobs/1",
		Description: strings.Repeat("building internal services ", 6), // ~160 chars
	}
}

func TestRuleScorerNeutralBaseline(t *testing.T) {
	a, err := RuleScorer{}.Assess(context.Background(), neutralPosting())
	require.NoError(t, err)

	assert.Equal(t, 70, a.Score)
	assert.Equal(t, RecommendApprove, a.Recommendation)
	assert.False(t, a.GhostJobLikely)
	assert.Empty(t, a.Concerns)
	assert.Empty(t, a.PositiveSignals)
	assert.Equal(t, "rules", a.Via)
}

func TestRuleScorerAdjustments(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.Posting)
		wantScore int
		wantRec   string
	}{
		{
			name: "urgency penalty",
			mutate: func(p *domain.Posting) {
				p.Title = "Backend Engineer - hiring immediately"
			},
			wantScore: 55,
			wantRec:   RecommendReview,
		},
		{
			name: "senior title but no experience",
			mutate: func(p *domain.Posting) {
				p.Title = "Senior Backend Engineer"
				p.Description += " No experience necessary."
			},
			wantScore: 50,
			wantRec:   RecommendReview,
		},
		{
			name: "vague company",
			mutate: func(p *domain.Posting) {
				p.Company = "Confidential"
			},
			wantScore: 55,
			wantRec:   RecommendReview,
		},
		{
			name: "short description",
			mutate: func(p *domain.Posting) {
				p.Description = "Great job!"
			},
			wantScore: 60,
			wantRec:   RecommendReview,
		},
		{
			name: "guaranteed income",
			mutate: func(p *domain.Posting) {
				p.Description += " Guaranteed income every week."
			},
			wantScore: 45,
			wantRec:   RecommendReject,
		},
		{
			name: "salary range bonus",
			mutate: func(p *domain.Posting) {
				p.SalaryMin, p.SalaryMax = 90000, 120000
			},
			wantScore: 80,
			wantRec:   RecommendApprove,
		},
		{
			name: "team language bonus",
			mutate: func(p *domain.Posting) {
				p.Description += " You will report to the platform lead."
			},
			wantScore: 75,
			wantRec:   RecommendApprove,
		},
		{
			name: "known ATS bonus",
			mutate: func(p *domain.Posting) {
				p.ApplyURL = "https://jobs.lever.co/acme/1"
			},
			wantScore: 80,
			wantRec:   RecommendApprove,
		},
		{
			name: "long description bonus",
			mutate: func(p *domain.Posting) {
				p.Description = strings.Repeat("responsibilities and detail ", 20) // >500
			},
			wantScore: 75,
			wantRec:   RecommendApprove,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := neutralPosting()
			tt.mutate(&p)

			a, err := RuleScorer{}.Assess(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, a.Score)
			assert.Equal(t, tt.wantRec, a.Recommendation)
			assert.Equal(t, a.Score < GhostScoreCutoff, a.GhostJobLikely)
		})
	}
}

func TestRuleScorerFullPositiveStack(t *testing.T) {
	// Trusted ATS link, disclosed salary, long description: 70+10+10+5.
	p := domain.Posting{
		Title:       "Junior Developer",
		Company:     "Acme",
		ApplyURL:    "https://boards-api.greenhouse.io/v1/boards/acme/jobs/1",
		SalaryMin:   70000,
		SalaryMax:   90000,
		Description: strings.Repeat("You will build and operate services. ", 16), // ~600 chars
	}

	a, err := RuleScorer{}.Assess(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 95, a.Score)
	assert.Equal(t, RecommendApprove, a.Recommendation)
	assert.False(t, a.GhostJobLikely)
	assert.Len(t, a.PositiveSignals, 3)
}

func TestRuleScorerClampsToRange(t *testing.T) {
	// Pile on every penalty; the score must floor at 0, not go negative.
	p := domain.Posting{
		Title:       "Senior Engineer urgent hiring",
		Company:     "Confidential",
		ApplyURL:    "https://jobs.example/1",
		Description: "No experience! Guaranteed income!",
	}

	a, err := RuleScorer{}.Assess(context.Background(), p)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, a.Score, 0)
	assert.LessOrEqual(t, a.Score, 100)
	assert.Equal(t, RecommendReject, a.Recommendation)
	assert.True(t, a.GhostJobLikely)
}

func TestRuleScorerNeverFails(t *testing.T) {
	_, err := RuleScorer{}.Assess(context.Background(), domain.Posting{})
	assert.NoError(t, err)
}
