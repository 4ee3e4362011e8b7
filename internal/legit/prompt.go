package legit

import (
	"fmt"

	"ghostcheck-engine/internal/domain"
)

const maxPromptDescription = 6000

const assessPrompt = `You are an expert screener detecting "ghost jobs": postings that are fake, expired, or never intended to be filled.

### INSTRUCTIONS:
1. **Assess** the posting below for legitimacy signals and ghost-job signals.
2. **Score** it 0-100 where 100 is certainly a real, active, fillable role.
3. **Recommend** one of APPROVE (clearly legitimate), REVIEW (uncertain), REJECT (likely ghost or scam).
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "score": 0,
    "concerns": ["specific problems you found"],
    "positive_signals": ["specific legitimacy signals you found"],
    "recommendation": "APPROVE | REVIEW | REJECT",
    "rationale": "one or two sentences explaining the score"
}

### POSTING:
Title: %s
Company: %s
Location: %s
Salary: %s

### DESCRIPTION:
%s
`

func buildPrompt(p domain.Posting) string {
	desc := p.Description
	if len(desc) > maxPromptDescription {
		desc = desc[:maxPromptDescription]
	}

	salary := "undisclosed"
	if p.SalaryMin > 0 {
		salary = fmt.Sprintf("$%d - $%d per year", p.SalaryMin, p.SalaryMax)
	}

	loc := p.LocationRaw
	if loc == "" {
		loc = p.LocationType
	}

	return fmt.Sprintf(assessPrompt, p.Title, p.Company, loc, salary, desc)
}
