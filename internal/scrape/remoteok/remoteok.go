package remoteok

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/types"
	"ghostcheck-engine/internal/scrape/util"
)

const apiURL = "https://remoteok.com/api"

type Scraper struct {
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "remoteok" }

// The feed's first element is a legal notice, not a job. Parsing it into
// this struct yields an empty position, which the loop skips.
type rokJob struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description"`
	Location    string `json:"location"`
	SalaryMin   int    `json:"salary_min"`
	SalaryMax   int    `json:"salary_max"`
	URL         string `json:"url"`
	ApplyURL    string `json:"apply_url"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.Result, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return types.Result{Source: s.Name()}, err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return types.Result{Source: s.Name()}, fmt.Errorf("remoteok get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return types.Result{Source: s.Name()}, fmt.Errorf("remoteok status %d", res.StatusCode)
	}

	var feed []rokJob
	if err := json.NewDecoder(res.Body).Decode(&feed); err != nil {
		return types.Result{Source: s.Name()}, fmt.Errorf("remoteok decode: %w", err)
	}

	out := make([]domain.Posting, 0, len(feed))
	for _, j := range feed {
		title := util.CleanText(j.Position)
		company := util.CleanText(j.Company)
		apply := strings.TrimSpace(j.ApplyURL)
		if apply == "" {
			apply = strings.TrimSpace(j.URL)
		}
		if title == "" || company == "" || apply == "" {
			continue
		}

		loc := util.NormalizeLocation(j.Location)
		lt := util.InferLocationType(loc, title, j.Description)
		if lt == domain.LocationUnknown {
			// remote-only board
			lt = domain.LocationRemote
		}

		out = append(out, domain.Posting{
			Title:        title,
			Company:      company,
			LocationRaw:  loc,
			LocationType: lt,
			SalaryMin:    j.SalaryMin,
			SalaryMax:    j.SalaryMax,
			ApplyURL:     apply,
			SourceURL:    strings.TrimSpace(j.URL),
			Source:       s.Name(),
			Description:  j.Description,
		})
	}

	log.Printf("[remoteok] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}
