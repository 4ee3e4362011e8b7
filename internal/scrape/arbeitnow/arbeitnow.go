package arbeitnow

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

const baseURL = "https://www.arbeitnow.com/api/job-board-api"

type Config struct {
	MaxPages int
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "arbeitnow" }

type pageResponse struct {
	Data []struct {
		Slug        string `json:"slug"`
		CompanyName string `json:"company_name"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Remote      bool   `json:"remote"`
		URL         string `json:"url"`
		Location    string `json:"location"`
	} `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.Result, error) {
	var out []domain.Posting

	for page := 1; page <= s.cfg.MaxPages; page++ {
		select {
		case <-ctx.Done():
			return types.Result{Source: s.Name(), Postings: out}, ctx.Err()
		default:
		}

		u := fmt.Sprintf("%s?page=%d", baseURL, page)
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")
		req.Header.Set("Accept", "application/json")

		if s.limiter != nil {
			if err := s.limiter.WaitURL(ctx, u); err != nil {
				return types.Result{Source: s.Name(), Postings: out}, err
			}
		}

		res, err := s.hc.Do(req)
		if err != nil {
			return types.Result{Source: s.Name(), Postings: out}, fmt.Errorf("arbeitnow get: %w", err)
		}

		var pr pageResponse
		derr := json.NewDecoder(res.Body).Decode(&pr)
		res.Body.Close()
		if res.StatusCode >= 400 {
			return types.Result{Source: s.Name(), Postings: out}, fmt.Errorf("arbeitnow status %d", res.StatusCode)
		}
		if derr != nil {
			return types.Result{Source: s.Name(), Postings: out}, fmt.Errorf("arbeitnow decode: %w", derr)
		}

		if len(pr.Data) == 0 {
			break
		}

		for _, j := range pr.Data {
			title := util.CleanText(j.Title)
			company := util.CleanText(j.CompanyName)
			jobURL := strings.TrimSpace(j.URL)
			if title == "" || company == "" || jobURL == "" {
				continue
			}

			loc := util.NormalizeLocation(j.Location)
			lt := util.InferLocationType(loc, title, j.Description)
			if j.Remote {
				lt = domain.LocationRemote
			}

			min, max := util.ParseSalaryRange(j.Description)

			out = append(out, domain.Posting{
				Title:        title,
				Company:      company,
				LocationRaw:  loc,
				LocationType: lt,
				SalaryMin:    min,
				SalaryMax:    max,
				ApplyURL:     jobURL,
				SourceURL:    jobURL,
				Source:       s.Name(),
				Description:  j.Description,
			})
		}

		if pr.Links.Next == "" {
			break
		}
	}

	log.Printf("[arbeitnow] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}
