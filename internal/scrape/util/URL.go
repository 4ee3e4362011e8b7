package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalURL strips tracking params and normalizes scheme/host so the
// same posting reached through different alert links dedups to one URL.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "trk" || lk == "trkemail" {
			q.Del(k)
		}
	}

	if strings.Contains(u.Host, "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// IsNoiseURL flags template links (unsubscribe, settings, alert management)
// that show up in job-alert emails next to the real posting links.
func IsNoiseURL(u string) bool {
	lu := strings.ToLower(u)
	junks := []string{
		"unsubscribe",
		"preferences",
		"manage-preferences",
		"email-preferences",
		"privacy",
		"terms",
		"view-in-browser",
		"viewaswebpage",
		"tracking",
		"pixel",
		"beacon",
		"/alerts",
		"/settings",
		"/help",
		"/legal",
	}
	for _, j := range junks {
		if strings.Contains(lu, j) {
			return true
		}
	}
	return false
}
