package legit

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ghostcheck-engine/internal/domain"
)

const (
	RecommendApprove = "APPROVE"
	RecommendReview  = "REVIEW"
	RecommendReject  = "REJECT"
)

// GhostScoreCutoff: below this a posting is more likely ghost than real.
const GhostScoreCutoff = 50

// Assessment is one scorer's judgement of a posting, normalized so every
// strategy emits the same shape: score clamped to [0,100], recommendation
// one of the three constants, ghost flag derived from the score.
type Assessment struct {
	Score           int      `json:"score"`
	GhostJobLikely  bool     `json:"ghost_job_likely"`
	Concerns        []string `json:"concerns"`
	PositiveSignals []string `json:"positive_signals"`
	Recommendation  string   `json:"recommendation"`
	Rationale       string   `json:"rationale"`
	Via             string   `json:"via"` // which strategy produced it
}

func (a Assessment) Accepted() bool {
	return a.Recommendation == RecommendApprove ||
		(a.Recommendation == RecommendReview && a.Score >= 60)
}

type Scorer interface {
	Name() string
	Assess(ctx context.Context, p domain.Posting) (Assessment, error)
}

// Chain tries each scorer in order and returns the first answer. The rule
// engine sits last and never fails, so a fully-degraded chain still scores.
type Chain struct {
	scorers []Scorer
}

func NewChain(scorers ...Scorer) *Chain {
	return &Chain{scorers: scorers}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Assess(ctx context.Context, p domain.Posting) (Assessment, error) {
	var lastErr error
	for _, s := range c.scorers {
		a, err := s.Assess(ctx, p)
		if err != nil {
			log.Printf("[legit] scorer=%s unavailable: %v", s.Name(), err)
			lastErr = err
			continue
		}
		return a, nil
	}
	return Assessment{}, fmt.Errorf("no scorer available: %w", lastErr)
}

func normalize(a Assessment, via string) Assessment {
	if a.Score < 0 {
		a.Score = 0
	}
	if a.Score > 100 {
		a.Score = 100
	}

	switch strings.ToUpper(strings.TrimSpace(a.Recommendation)) {
	case RecommendApprove:
		a.Recommendation = RecommendApprove
	case RecommendReject:
		a.Recommendation = RecommendReject
	default:
		a.Recommendation = RecommendReview
	}

	a.GhostJobLikely = a.Score < GhostScoreCutoff
	a.Via = via
	return a
}

func scoreRecommendation(score int) string {
	switch {
	case score >= 70:
		return RecommendApprove
	case score >= GhostScoreCutoff:
		return RecommendReview
	default:
		return RecommendReject
	}
}
