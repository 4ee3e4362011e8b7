package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
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
	Slug string // api.lever.co/v0/postings/<slug>
	Name string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter

	BatchSize  int
	BatchPause time.Duration
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:        cfg,
		hc:         &http.Client{Timeout: 20 * time.Second},
		limiter:    limiter,
		BatchSize:  4,
		BatchPause: 700 * time.Millisecond,
	}
}

func (s *Scraper) Name() string { return "lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	ApplyURL   string `json:"applyUrl"`
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	SalaryRange struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"salaryRange"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
}

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
				cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
				jobs, err := s.fetchCompany(cctx, co)
				cancel()
				if err != nil {
					log.Printf("[ats:lever] company=%q slug=%q err=%v", co.Name, co.Slug, err)
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

	log.Printf("[lever] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.Posting, error) {
	apiURL := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", co.Slug)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("lever status %d", res.StatusCode)
	}

	var postings []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	name := strings.TrimSpace(co.Name)
	if name == "" {
		name = co.Slug
	}

	out := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		title := util.CleanText(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}

		desc := p.DescriptionPlain
		if desc == "" {
			desc = p.Description
		}

		apply := p.ApplyURL
		if apply == "" {
			apply = p.HostedURL
		}

		loc := util.NormalizeLocation(p.Categories.Location)
		min, max := p.SalaryRange.Min, p.SalaryRange.Max
		if min == 0 && max == 0 {
			min, max = util.ParseSalaryRange(desc)
		}

		out = append(out, domain.Posting{
			Title:        title,
			Company:      name,
			LocationRaw:  loc,
			LocationType: util.InferLocationType(loc, title, desc),
			SalaryMin:    min,
			SalaryMax:    max,
			ApplyURL:     apply,
			SourceURL:    p.HostedURL,
			Source:       s.Name(),
			Description:  desc,
		})
	}

	return out, nil
}
