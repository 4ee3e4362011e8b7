package verify

import (
	"regexp"
	"strings"

	"ghostcheck-engine/internal/domain"
)

// UnrealisticSalaryMin is the annual floor above which a disclosed minimum
// reads as bait rather than an offer.
const UnrealisticSalaryMin = 200_000

// Scanned in order; a posting's flag list is deterministic.
var redFlagPatterns = []struct {
	Label string
	Re    *regexp.Regexp
}{
	{"urgency", regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?\s+hiring|immediate\s+start|apply\s+(?:now|today|immediately)|hiring\s+immediately)\b`)},
	{"guaranteed-income", regexp.MustCompile(`(?i)guaranteed\s+(?:income|money|earnings|salary|pay)`)},
	{"unrealistic-pay", regexp.MustCompile(`(?i)(?:earn|make)\s+\$?\s?\d[\d,]*\+?\s*(?:per|a|/)\s*(?:day|week|hour)`)},
	{"upfront-fee", regexp.MustCompile(`(?i)(?:registration|training|starter|application|upfront)\s+fee`)},
	{"bank-details", regexp.MustCompile(`(?i)bank\s+(?:account|details)|routing\s+number`)},
	{"personal-info", regexp.MustCompile(`(?i)\b(?:social\s+security|ssn|date\s+of\s+birth)\b`)},
	{"mlm", regexp.MustCompile(`(?i)\b(?:mlm|multi-?level\s+marketing|be\s+your\s+own\s+boss|unlimited\s+earning)\b`)},
	{"wire-transfer", regexp.MustCompile(`(?i)wire\s+transfer|western\s+union|moneygram`)},
}

// vague company names that hide who is actually hiring
var vagueCompanyNames = map[string]bool{
	"company":      true,
	"confidential": true,
}

// ScanFlags runs the pattern table over title+description, then appends
// the two computed flags (salary bait, anonymous company).
func ScanFlags(p domain.Posting) []string {
	text := p.Title + " " + p.Description

	var flags []string
	for _, pat := range redFlagPatterns {
		if pat.Re.MatchString(text) {
			flags = append(flags, pat.Label)
		}
	}

	if p.SalaryMin > UnrealisticSalaryMin {
		flags = append(flags, "unrealistic-salary")
	}

	company := strings.TrimSpace(p.Company)
	if len(company) < 3 || vagueCompanyNames[strings.ToLower(company)] {
		flags = append(flags, "vague-company")
	}

	return flags
}
