package weworkremotely

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/types"
	"ghostcheck-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const siteURL = "https://weworkremotely.com"

type Config struct {
	Categories []string // e.g. remote-programming-jobs
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if len(cfg.Categories) == 0 {
		cfg.Categories = []string{"remote-programming-jobs"}
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "weworkremotely" }

func (s *Scraper) Fetch(ctx context.Context) (types.Result, error) {
	var out []domain.Posting
	seen := map[string]bool{}

	for _, cat := range s.cfg.Categories {
		jobs, err := s.fetchCategory(ctx, cat)
		if err != nil {
			// one broken category page shouldn't sink the others
			log.Printf("[weworkremotely] category=%q err=%v", cat, err)
			continue
		}
		for _, j := range jobs {
			if seen[j.SourceURL] {
				continue
			}
			seen[j.SourceURL] = true
			out = append(out, j)
		}
	}

	// Listing rows carry no description; the detail pages do, and the
	// scorer downstream cares about description length.
	for i := range out {
		_ = s.hydrate(ctx, &out[i])
	}

	log.Printf("[weworkremotely] Processed: %d", len(out))
	return types.Result{Source: s.Name(), Postings: out}, nil
}

func (s *Scraper) fetchCategory(ctx context.Context, category string) ([]domain.Posting, error) {
	pageURL := fmt.Sprintf("%s/categories/%s", siteURL, category)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, pageURL); err != nil {
			return nil, err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wwr get category: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("wwr category status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("wwr parse category html: %w", err)
	}

	var jobs []domain.Posting
	doc.Find("section.jobs li").Each(func(_ int, li *goquery.Selection) {
		if li.HasClass("view-all") {
			return
		}

		a := li.Find("a[href]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			return strings.Contains(href, "/remote-jobs/") || strings.Contains(href, "/listings/")
		}).First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}

		abs := strings.TrimSpace(href)
		if strings.HasPrefix(abs, "/") {
			abs = siteURL + abs
		}

		title := util.CleanText(li.Find("span.title").First().Text())
		company := util.CleanText(li.Find("span.company").First().Text())
		region := util.CleanText(li.Find("span.region").First().Text())
		if title == "" || company == "" {
			return
		}

		jobs = append(jobs, domain.Posting{
			Title:        title,
			Company:      company,
			LocationRaw:  util.NormalizeLocation(region),
			LocationType: domain.LocationRemote,
			ApplyURL:     abs,
			SourceURL:    abs,
			Source:       s.Name(),
		})
	})

	return jobs, nil
}

func (s *Scraper) hydrate(ctx context.Context, p *domain.Posting) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, p.SourceURL, nil)
	req.Header.Set("User-Agent", "GhostCheck/1.0 (+local)")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, p.SourceURL); err != nil {
			return err
		}
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("listing page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return err
	}

	desc := util.CleanText(doc.Find("div.listing-container").First().Text())
	if desc == "" {
		desc = util.CleanText(doc.Find("#job-listing-show-container").First().Text())
	}
	if desc != "" {
		p.Description = desc
		if min, max := util.ParseSalaryRange(desc); p.SalaryMin == 0 && min > 0 {
			p.SalaryMin, p.SalaryMax = min, max
		}
	}

	// apply link on the detail page beats the listing URL
	if applyHref, ok := doc.Find("a#job-cta-alt, a.apply").First().Attr("href"); ok {
		applyHref = strings.TrimSpace(applyHref)
		if strings.HasPrefix(applyHref, "/") {
			applyHref = siteURL + applyHref
		}
		if applyHref != "" {
			p.ApplyURL = applyHref
		}
	}

	return nil
}
