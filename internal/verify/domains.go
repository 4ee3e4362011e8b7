package verify

import (
	"net"
	"net/url"
	"strings"
)

// Hosts under these domains are applicant tracking systems we trust
// without probing. The scorer gives postings hosted on them a bonus, so
// this list stays here where both sides read it.
var trustedATSDomains = []string{
	"greenhouse.io",
	"lever.co",
	"myworkdayjobs.com",
	"smartrecruiters.com",
	"ashbyhq.com",
	"icims.com",
	"jobvite.com",
	"bamboohr.com",
	"recruitee.com",
	"breezy.hr",
	"workable.com",
}

func TrustedApplyHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	for _, d := range trustedATSDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func TrustedApplyURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return TrustedApplyHost(u.Hostname())
}

// RootDomain reduces a host to its last two labels. Good enough for the
// "does the company's bare domain even resolve" probe; multi-part public
// suffixes degrade to a stricter check, never a laxer one.
func RootDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if net.ParseIP(host) != nil {
		return host
	}
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
