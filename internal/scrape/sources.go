package scrape

import (
	"log"

	"ghostcheck-engine/internal/config"
	"ghostcheck-engine/internal/scrape/arbeitnow"
	"ghostcheck-engine/internal/scrape/emailalert"
	"ghostcheck-engine/internal/scrape/greenhouse"
	"ghostcheck-engine/internal/scrape/lever"
	"ghostcheck-engine/internal/scrape/remoteok"
	"ghostcheck-engine/internal/scrape/smartrecruiters"
	"ghostcheck-engine/internal/scrape/types"
	"ghostcheck-engine/internal/scrape/util"
	"ghostcheck-engine/internal/scrape/weworkremotely"
	"ghostcheck-engine/internal/scrape/workday"
	"ghostcheck-engine/internal/secrets"
)

// BuildFetchers assembles the enabled sources in a fixed order. Order
// matters downstream: when two sources list the same role, the earlier
// source's copy survives dedup.
func BuildFetchers(cfg config.Config, limiter *util.HostLimiter) []types.Fetcher {
	var fetchers []types.Fetcher

	if cfg.Sources.RemoteOK.Enabled {
		fetchers = append(fetchers, remoteok.New(limiter))
	}
	if cfg.Sources.Arbeitnow.Enabled {
		fetchers = append(fetchers, arbeitnow.New(arbeitnow.Config{
			MaxPages: cfg.Sources.Arbeitnow.MaxPages,
		}, limiter))
	}
	if cfg.Sources.WeWorkRemotely.Enabled {
		fetchers = append(fetchers, weworkremotely.New(weworkremotely.Config{
			Categories: cfg.Sources.WeWorkRemotely.Categories,
		}, limiter))
	}
	if cfg.Sources.Greenhouse.Enabled {
		fetchers = append(fetchers, greenhouse.New(greenhouse.Config{
			Companies: MapGreenhouseCompanies(cfg.Sources.Greenhouse.Companies),
		}, limiter))
	}
	if cfg.Sources.Lever.Enabled {
		fetchers = append(fetchers, lever.New(lever.Config{
			Companies: MapLeverCompanies(cfg.Sources.Lever.Companies),
		}, limiter))
	}
	if cfg.Sources.SmartRecruiters.Enabled {
		fetchers = append(fetchers, smartrecruiters.New(smartrecruiters.Config{
			Companies: MapSmartRecruitersCompanies(cfg.Sources.SmartRecruiters.Companies),
		}, limiter))
	}
	if cfg.Sources.Workday.Enabled {
		fetchers = append(fetchers, workday.New(workday.Config{
			Companies: MapWorkdayCompanies(cfg.Sources.Workday.Companies),
		}, limiter))
	}
	if cfg.Email.Enabled {
		pw, err := secrets.GetIMAPPassword(secrets.IMAPAccount(cfg))
		if err != nil {
			log.Printf("[sources] email enabled but no password, skipping: %v", err)
		} else {
			fetchers = append(fetchers, &emailalert.Fetcher{Cfg: cfg, Password: pw})
		}
	}

	return fetchers
}

func MapGreenhouseCompanies(in []config.Company) []greenhouse.Company {
	out := make([]greenhouse.Company, 0, len(in))
	for _, c := range in {
		out = append(out, greenhouse.Company{
			Slug: c.Slug,
			Name: c.Name,
		})
	}
	return out
}

func MapLeverCompanies(in []config.Company) []lever.Company {
	out := make([]lever.Company, 0, len(in))
	for _, c := range in {
		out = append(out, lever.Company{
			Slug: c.Slug,
			Name: c.Name,
		})
	}
	return out
}

func MapSmartRecruitersCompanies(in []config.Company) []smartrecruiters.Company {
	out := make([]smartrecruiters.Company, 0, len(in))
	for _, c := range in {
		out = append(out, smartrecruiters.Company{
			Slug: c.Slug,
			Name: c.Name,
		})
	}
	return out
}

func MapWorkdayCompanies(in []config.Company) []workday.Company {
	out := make([]workday.Company, 0, len(in))
	for _, c := range in {
		out = append(out, workday.Company{
			Slug: c.Slug,
			Name: c.Name,
		})
	}
	return out
}
