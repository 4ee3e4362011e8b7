package util

import "strings"

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.Contains(l, "view job") || strings.Contains(l, "see all") || strings.Contains(l, "apply now")
}

// ExtractLocationFromLabeledText pulls the value after "Location:" style
// labels out of plain text (alert email bodies, og:description blobs).
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"location:",
		"locations:",
		"job location:",
	}

	for _, lab := range labels {
		if i := strings.Index(low, lab); i >= 0 {
			start := i + len(lab)
			rest := strings.TrimSpace(s[start:])

			// stop at newline-ish boundaries if present
			for _, cut := range []string{"\n", "\r", " | ", " · "} {
				if j := strings.Index(rest, cut); j >= 0 {
					rest = rest[:j]
				}
			}

			rest = CleanText(rest)
			if rest != "" && len(rest) <= 80 {
				return rest
			}
		}
	}
	return ""
}
