package verify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/util"
)

// Verdict is the outcome of verifying one posting. Computed once, never
// mutated afterwards.
type Verdict struct {
	URLAccessible bool     `json:"url_accessible"`
	HTTPStatus    int      `json:"http_status"` // 0 = no response
	DomainTrusted bool     `json:"domain_trusted"`
	RedFlags      []string `json:"red_flags"`
	Valid         bool     `json:"valid"`
}

type Verifier struct {
	hc      *http.Client
	limiter *util.HostLimiter

	// Timeout bounds each individual request, not the whole verdict.
	Timeout time.Duration
}

func New(limiter *util.HostLimiter) *Verifier {
	return &Verifier{
		hc:      &http.Client{},
		limiter: limiter,
		Timeout: 10 * time.Second,
	}
}

func (v *Verifier) Verify(ctx context.Context, p domain.Posting) Verdict {
	var out Verdict
	out.URLAccessible, out.HTTPStatus = v.CheckURL(ctx, p.ApplyURL)
	out.DomainTrusted = v.checkDomain(ctx, p.ApplyURL)
	out.RedFlags = ScanFlags(p)
	out.Valid = out.URLAccessible && out.DomainTrusted && len(out.RedFlags) == 0
	return out
}

// CheckURL probes with HEAD first; boards that reject the method get one
// GET retry. Anything in [200,400) after redirects counts as reachable.
func (v *Verifier) CheckURL(ctx context.Context, raw string) (ok bool, status int) {
	ok, status = v.request(ctx, http.MethodHead, raw)
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		ok, status = v.request(ctx, http.MethodGet, raw)
	}
	return ok, status
}

func (v *Verifier) request(ctx context.Context, method, raw string) (bool, int) {
	cctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, method, raw, nil)
	if err != nil {
		return false, 0
	}
	req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")

	if v.limiter != nil {
		if err := v.limiter.WaitURL(cctx, raw); err != nil {
			return false, 0
		}
	}

	res, err := v.hc.Do(req)
	if err != nil {
		return false, 0
	}
	defer res.Body.Close()

	return res.StatusCode >= 200 && res.StatusCode < 400, res.StatusCode
}

// checkDomain trusts known ATS hosts outright; anything else has to at
// least serve something on its root domain.
func (v *Verifier) checkDomain(ctx context.Context, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if TrustedApplyHost(host) {
		return true
	}
	ok, _ := v.CheckURL(ctx, "https://"+RootDomain(host))
	return ok
}
