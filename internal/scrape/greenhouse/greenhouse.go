package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
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
	Companies []Company // boards-api.greenhouse.io/v1/boards/<slug>
}

type Company struct {
	Slug string
	Name string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter

	// BatchSize companies are fetched concurrently, then BatchPause
	// before the next group, so a long roster doesn't burst the API.
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

func (s *Scraper) Name() string { return "greenhouse" }

type boardResponse struct {
	Jobs []struct {
		ID          int64  `json:"id"`
		AbsoluteURL string `json:"absolute_url"`
		Title       string `json:"title"`
		Location    struct {
			Name string `json:"name"`
		} `json:"location"`
		Content string `json:"content"` // escaped html
	} `json:"jobs"`
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
					log.Printf("[ats:greenhouse] company=%q slug=%q err=%v", co.Name, co.Slug, err)
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

	log.Printf("[greenhouse] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.Posting, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug")
	}

	apiURL := fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs?content=true", slug)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("greenhouse status %d", res.StatusCode)
	}

	var br boardResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("greenhouse decode: %w", err)
	}

	name := strings.TrimSpace(co.Name)
	if name == "" {
		name = slug
	}

	out := make([]domain.Posting, 0, len(br.Jobs))
	for _, j := range br.Jobs {
		title := util.CleanText(j.Title)
		if title == "" || j.AbsoluteURL == "" {
			continue
		}

		desc := html.UnescapeString(j.Content)
		loc := util.NormalizeLocation(j.Location.Name)
		min, max := util.ParseSalaryRange(desc)

		out = append(out, domain.Posting{
			Title:        title,
			Company:      name,
			LocationRaw:  loc,
			LocationType: util.InferLocationType(loc, title, desc),
			SalaryMin:    min,
			SalaryMax:    max,
			ApplyURL:     j.AbsoluteURL,
			SourceURL:    j.AbsoluteURL,
			Source:       s.Name(),
			Description:  desc,
		})
	}

	return out, nil
}
