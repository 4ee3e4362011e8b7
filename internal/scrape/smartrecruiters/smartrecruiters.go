package smartrecruiters

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
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
	// Slug is the SmartRecruiters company identifier used in URLs, e.g.
	// https://jobs.smartrecruiters.com/<slug>
	Slug string
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
		hc:         &http.Client{Timeout: 25 * time.Second},
		limiter:    limiter,
		BatchSize:  4,
		BatchPause: 700 * time.Millisecond,
	}
}

func (s *Scraper) Name() string { return "smartrecruiters" }

// Response schema (public API) is typically:
// { "content": [...], "totalFound": N, "offset": O, "limit": L }
// but we defensively parse only what we need.
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type posting struct {
	ID       string `json:"id"`
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Ref      string `json:"ref"`
	Location struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
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
				cctx, cancel := context.WithTimeout(ctx, 20*time.Second)
				jobs, err := s.fetchCompany(cctx, co)
				cancel()
				if err != nil {
					log.Printf("[ats:smartrecruiters] company=%q slug=%q err=%v", co.Name, co.Slug, err)
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

	log.Printf("[smartrecruiters] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.Posting, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug")
	}

	// Public API endpoint.
	// Example: https://api.smartrecruiters.com/v1/companies/<slug>/postings?limit=100&offset=0
	base := fmt.Sprintf("https://api.smartrecruiters.com/v1/companies/%s/postings", url.PathEscape(slug))

	name := strings.TrimSpace(co.Name)
	if name == "" {
		name = slug
	}

	limit := 100
	offset := 0
	var out []domain.Posting

	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		u := fmt.Sprintf("%s?limit=%d&offset=%d", base, limit, offset)
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")
		req.Header.Set("Accept", "application/json")

		if s.limiter != nil {
			if err := s.limiter.WaitURL(ctx, u); err != nil {
				return out, err
			}
		}

		res, err := s.hc.Do(req)
		if err != nil {
			return out, fmt.Errorf("smartrecruiters get: %w", err)
		}

		var pr postingsResponse
		err = json.NewDecoder(res.Body).Decode(&pr)
		res.Body.Close()
		if res.StatusCode >= 400 {
			return out, fmt.Errorf("smartrecruiters status %d", res.StatusCode)
		}
		if err != nil {
			return out, fmt.Errorf("smartrecruiters decode: %w", err)
		}

		if len(pr.Content) == 0 {
			break
		}

		for _, p := range pr.Content {
			title := util.CleanText(p.Name)
			id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID, p.Ref))
			if title == "" || id == "" {
				continue
			}
			jobURL := fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", slug, id)

			loc := strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", ")
			loc = util.NormalizeLocation(loc)

			locType := util.InferLocationType(loc, title, "")
			if p.Location.Remote {
				locType = domain.LocationRemote
			}

			out = append(out, domain.Posting{
				Title:        title,
				Company:      name,
				LocationRaw:  loc,
				LocationType: locType,
				ApplyURL:     jobURL,
				SourceURL:    jobURL,
				Source:       s.Name(),
			})
		}

		offset += limit
		if pr.TotalFound > 0 && offset >= pr.TotalFound {
			break
		}
		if offset > 5000 {
			break
		}
	}

	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
