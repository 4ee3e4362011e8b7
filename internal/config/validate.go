package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned copy plus everything wrong or
// questionable about it. Callers decide whether warnings matter.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	trimCompanies := func(cs []Company) []Company {
		seen := map[string]bool{}
		var ys []Company
		for _, c := range cs {
			c.Slug = strings.TrimSpace(c.Slug)
			c.Name = strings.TrimSpace(c.Name)
			if c.Slug == "" {
				continue
			}
			key := strings.ToLower(c.Slug)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, c)
		}
		return ys
	}

	// Normalize common lists
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)
	out.Sources.WeWorkRemotely.Categories = trimList(out.Sources.WeWorkRemotely.Categories)
	out.Sources.Greenhouse.Companies = trimCompanies(out.Sources.Greenhouse.Companies)
	out.Sources.Lever.Companies = trimCompanies(out.Sources.Lever.Companies)
	out.Sources.SmartRecruiters.Companies = trimCompanies(out.Sources.SmartRecruiters.Companies)
	out.Sources.Workday.Companies = trimCompanies(out.Sources.Workday.Companies)
	out.LLM.GroqModel = strings.TrimSpace(out.LLM.GroqModel)
	out.LLM.GeminiModel = strings.TrimSpace(out.LLM.GeminiModel)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Pipeline.IngestMinutes <= 0 {
		res.addErr("pipeline.ingest_minutes must be > 0")
	} else if out.Pipeline.IngestMinutes < 5 {
		res.addWarn("pipeline.ingest_minutes is very low (%d) and may trip source rate limits.", out.Pipeline.IngestMinutes)
	}
	if out.Pipeline.SweepMinutes <= 0 {
		res.addErr("pipeline.sweep_minutes must be > 0")
	}

	anySource := out.Sources.RemoteOK.Enabled ||
		out.Sources.Arbeitnow.Enabled ||
		out.Sources.WeWorkRemotely.Enabled ||
		out.Sources.Greenhouse.Enabled ||
		out.Sources.Lever.Enabled ||
		out.Sources.SmartRecruiters.Enabled ||
		out.Sources.Workday.Enabled ||
		out.Email.Enabled
	if !anySource {
		res.addWarn("no sources enabled; every run will come back empty.")
	}

	if out.Sources.Arbeitnow.MaxPages < 0 {
		res.addErr("sources.arbeitnow.max_pages must be >= 0")
	} else if out.Sources.Arbeitnow.MaxPages > 10 {
		res.addWarn("sources.arbeitnow.max_pages is high (%d); each run will be slow.", out.Sources.Arbeitnow.MaxPages)
	}

	if out.Sources.Greenhouse.Enabled && len(out.Sources.Greenhouse.Companies) == 0 {
		res.addErr("sources.greenhouse.companies is empty but greenhouse is enabled")
	}
	if out.Sources.Lever.Enabled && len(out.Sources.Lever.Companies) == 0 {
		res.addErr("sources.lever.companies is empty but lever is enabled")
	}
	if out.Sources.SmartRecruiters.Enabled && len(out.Sources.SmartRecruiters.Companies) == 0 {
		res.addErr("sources.smartrecruiters.companies is empty but smartrecruiters is enabled")
	}
	if out.Sources.Workday.Enabled {
		if len(out.Sources.Workday.Companies) == 0 {
			res.addErr("sources.workday.companies is empty but workday is enabled")
		}
		for _, c := range out.Sources.Workday.Companies {
			if !strings.HasPrefix(c.Slug, "http://") && !strings.HasPrefix(c.Slug, "https://") {
				res.addErr("sources.workday company %q needs the full board URL as slug", c.Name)
			}
		}
	}

	// email required fields if enabled (password not required here; it's in keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; every unread message will be parsed.")
		}
	}

	if out.Notify.Enabled && out.Notify.TelegramChatID == 0 {
		res.addErr("notify.telegram_chat_id is required when notify.enabled=true")
	}

	return out, res
}
