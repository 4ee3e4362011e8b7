package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/types"
	"ghostcheck-engine/internal/scrape/util"
)

type Config struct {
	Companies []Company
}

type Company struct {
	Slug string // Needs full Workday job board URL
	Name string
}

type Scraper struct {
	cfg     Config
	limiter *util.HostLimiter

	BatchSize  int
	BatchPause time.Duration

	mu          sync.Mutex
	blockedHost map[string]bool
}

type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:         cfg,
		limiter:     limiter,
		BatchSize:   3,
		BatchPause:  time.Second,
		blockedHost: map[string]bool{},
	}
}

func (s *Scraper) Name() string { return "workday" }

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	ExternalURL   string `json:"externalUrl"`
	LocationsText string `json:"locationsText"`
	Location      string `json:"location"`
}

// Per-company client with a cookie jar so cookies/CSRF persist.
func newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
	}
}

var ErrWorkdayBlocked = errors.New("workday blocked by cloudflare")

func (s *Scraper) Fetch(ctx context.Context) (types.Result, error) {
	var (
		mu  sync.Mutex
		out []domain.Posting
	)

	batches := util.Chunk(s.cfg.Companies, s.BatchSize)
	for bi, batch := range batches {
		var wg sync.WaitGroup
		for _, co := range batch {
			co := co
			wg.Add(1)
			go func() {
				defer wg.Done()
				cctx, cancel := context.WithTimeout(ctx, 20*time.Second)
				jobs, err := s.fetchCompany(cctx, co)
				cancel()
				if err != nil {
					if errors.Is(err, ErrWorkdayBlocked) {
						log.Printf("[ats:workday] host blocked by Cloudflare; skipping %q", co.Name)
						return
					}
					log.Printf("[ats:workday] company=%q slug=%q err=%v", co.Name, co.Slug, err)
					return
				}
				mu.Lock()
				out = append(out, jobs...)
				mu.Unlock()
			}()
		}
		wg.Wait()

		if bi < len(batches)-1 {
			select {
			case <-ctx.Done():
				return types.Result{Source: s.Name(), Postings: out}, ctx.Err()
			case <-time.After(s.BatchPause):
			}
		}
	}

	log.Printf("[workday] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}

func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}

	parts := strings.Split(u.Host, ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}
	tenant := parts[0]

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("unexpected path %q", u.Path)
	}

	// Detect locale like "en-US" (case-insensitive)
	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = normalizeLocale(segs[0]) // preserve proper casing
		segs = segs[1:]
	}

	site := segs[len(segs)-1]
	if site == "" {
		return board{}, fmt.Errorf("could not derive site from path %q", u.Path)
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: tenant,
		Site:   site,
		Locale: locale,
	}, nil
}

func looksLikeLocale(s string) bool {
	// accepts en-US, en-us, etc.
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	a := s[0:2]
	b := s[3:5]
	return isAlpha(a) && isAlpha(b)
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
	}
	return s
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func (b board) jobsEndpoint() string {
	base := fmt.Sprintf("%s://%s/wday/cxs/%s/%s/jobs", b.Scheme, b.Host, b.Tenant, b.Site)
	if b.Locale == "" {
		return base
	}
	// Workday accepts locale via query param on many tenants
	return base + "?locale=" + url.QueryEscape(b.Locale)
}

func (b board) absoluteJobURL(p wdPosting) string {
	if p.ExternalURL != "" {
		return strings.TrimSpace(p.ExternalURL)
	}
	path := strings.TrimSpace(p.ExternalPath)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", b.Scheme, b.Host, path)
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.Posting, error) {
	b, err := parseBoardURL(co.Slug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.blockedHost[b.Host] {
		s.mu.Unlock()
		return nil, ErrWorkdayBlocked
	}
	s.mu.Unlock()

	hc := newClient()
	endpoint := b.jobsEndpoint()

	// Bootstrap once; some tenants require CALYPSO_CSRF_TOKEN + CXS_SESSION.
	csrf, bootErr := bootstrapSession(ctx, hc, co.Slug)
	if errors.Is(bootErr, ErrWorkdayBlocked) {
		s.markBlocked(b.Host)
		return nil, ErrWorkdayBlocked
	}

	name := strings.TrimSpace(co.Name)
	if name == "" {
		name = b.Tenant
	}

	limit := 50
	offset := 0
	var out []domain.Posting

	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		payload, _ := json.Marshal(wdRequest{
			AppliedFacets: map[string]any{},
			Limit:         limit,
			Offset:        offset,
		})

		data, status, err := s.postJobs(ctx, hc, b, co, endpoint, payload, csrf)
		if err != nil {
			return out, err
		}

		// Try one retry after bootstrapping.
		if status >= 400 {
			if bootErr == nil {
				return out, fmt.Errorf("workday status %d body=%s", status, truncate(string(data), 240))
			}

			csrf2, err2 := bootstrapSession(ctx, hc, co.Slug)
			if errors.Is(err2, ErrWorkdayBlocked) {
				s.markBlocked(b.Host)
				return out, ErrWorkdayBlocked
			}
			bootErr = nil
			csrf = csrf2

			data, status, err = s.postJobs(ctx, hc, b, co, endpoint, payload, csrf)
			if err != nil {
				return out, err
			}
			if status >= 400 {
				return out, fmt.Errorf("workday status %d body=%s", status, truncate(string(data), 240))
			}
		}

		var jr wdResponse
		if err := json.Unmarshal(data, &jr); err != nil {
			return out, fmt.Errorf("workday decode: %w body=%s", err, truncate(string(data), 240))
		}

		if len(jr.JobPostings) == 0 {
			break
		}

		for _, p := range jr.JobPostings {
			title := util.CleanText(p.Title)
			jobURL := b.absoluteJobURL(p)
			if title == "" || jobURL == "" {
				continue
			}

			loc := util.NormalizeLocation(firstNonEmpty(p.LocationsText, p.Location))

			out = append(out, domain.Posting{
				Title:        title,
				Company:      name,
				LocationRaw:  loc,
				LocationType: util.InferLocationType(loc, title, ""),
				ApplyURL:     jobURL,
				SourceURL:    jobURL,
				Source:       s.Name(),
			})
		}

		offset += limit
		if jr.Total > 0 && offset >= jr.Total {
			break
		}
		if offset > 5000 {
			break
		}
	}

	return out, nil
}

func (s *Scraper) markBlocked(host string) {
	s.mu.Lock()
	s.blockedHost[host] = true
	s.mu.Unlock()
}

func (s *Scraper) postJobs(ctx context.Context, hc *http.Client, b board, co Company, endpoint string, payload []byte, csrf string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", fmt.Sprintf("%s://%s", b.Scheme, b.Host))
	req.Header.Set("Referer", strings.TrimRight(co.Slug, "/"))
	req.Header.Set("Accept-Language", firstNonEmpty(b.Locale, "en-US"))
	if csrf != "" {
		req.Header.Set("x-calypso-csrf-token", csrf)
	}

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, 0, err
		}
	}

	res, err := hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("workday post jobs: %w", err)
	}
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()
	return data, res.StatusCode, nil
}

func bootstrapSession(ctx context.Context, client *http.Client, boardURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Read a small preview first (for CF detection), then discard the rest.
	previewBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	preview := string(previewBytes)
	_, _ = io.Copy(io.Discard, resp.Body)

	if looksLikeCloudflareBlock(resp, preview) {
		return "", ErrWorkdayBlocked
	}

	// Pull CALYPSO_CSRF_TOKEN from cookies in jar
	u, _ := url.Parse(boardURL)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}

	return "", fmt.Errorf("workday bootstrap: missing CALYPSO_CSRF_TOKEN cookie (status=%d)", resp.StatusCode)
}

func looksLikeCloudflareBlock(resp *http.Response, bodyPreview string) bool {
	server := strings.ToLower(resp.Header.Get("Server"))
	cfRay := resp.Header.Get("CF-RAY")
	if cfRay == "" {
		cfRay = resp.Header.Get("cf-ray")
	}

	// If CF is in play at all, and we're not getting normal HTML, treat as blocked.
	if strings.Contains(server, "cloudflare") && cfRay != "" {
		return true
	}

	low := strings.ToLower(bodyPreview)
	if strings.Contains(low, "/cdn-cgi/") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare")) {
		return true
	}

	if resp.StatusCode == 403 || resp.StatusCode == 429 {
		return true
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
