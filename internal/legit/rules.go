package legit

import (
	"context"
	"strings"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/verify"
)

// RuleScorer is the deterministic fallback when no LLM is reachable. It
// starts every posting at 70 and walks a fixed list of adjustments, so
// the same posting always lands on the same score.
type RuleScorer struct{}

func (RuleScorer) Name() string { return "rules" }

var seniorMarkers = []string{"senior", "sr.", "sr ", "lead", "principal", "staff"}

var teamPhrases = []string{"our team", "report to", "reporting to", "team of"}

func (RuleScorer) Assess(_ context.Context, p domain.Posting) (Assessment, error) {
	score := 70
	var concerns, positives []string

	flags := map[string]bool{}
	for _, f := range verify.ScanFlags(p) {
		flags[f] = true
	}

	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)

	if flags["urgency"] {
		score -= 15
		concerns = append(concerns, "urgency pressure language")
	}
	if strings.Contains(desc, "no experience") && hasAny(title, seniorMarkers) {
		score -= 20
		concerns = append(concerns, "senior title but no experience required")
	}
	if flags["vague-company"] {
		score -= 15
		concerns = append(concerns, "company name missing or vague")
	}
	if len(p.Description) < 100 {
		score -= 10
		concerns = append(concerns, "description too short to judge")
	}
	if flags["guaranteed-income"] {
		score -= 25
		concerns = append(concerns, "guaranteed income promise")
	}

	if p.HasSalaryRange() {
		score += 10
		positives = append(positives, "salary range disclosed")
	}
	if hasAny(desc, teamPhrases) {
		score += 5
		positives = append(positives, "mentions team structure")
	}
	if verify.TrustedApplyURL(p.ApplyURL) {
		score += 10
		positives = append(positives, "hosted on a known ATS")
	}
	if len(p.Description) > 500 {
		score += 5
		positives = append(positives, "detailed description")
	}

	a := Assessment{
		Score:           score,
		Concerns:        concerns,
		PositiveSignals: positives,
		Recommendation:  scoreRecommendation(score),
		Rationale:       "rule-based screen, no model available",
	}
	return normalize(a, "rules"), nil
}

func hasAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
