package emailalert

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ghostcheck-engine/internal/config"
	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/types"

	"github.com/emersion/go-imap/v2"
)

// Fetcher turns unseen job-alert emails into postings. Messages are only
// marked seen via Result.Finalize, after the batch made it through the
// pipeline, so a crashed run re-reads them next time.
type Fetcher struct {
	Cfg      config.Config
	Password string
}

func (f *Fetcher) Name() string { return "emailalert" }

func (f *Fetcher) Fetch(ctx context.Context) (types.Result, error) {
	res := types.Result{Source: f.Name()}
	e := f.Cfg.Email

	addr := fmt.Sprintf("%s:%d", e.IMAPHost, e.IMAPPort)
	c, err := dialAndLogin(ctx, addr, e.Username, f.Password)
	if err != nil {
		return res, err
	}

	if err := selectMailbox(c, e.Mailbox); err != nil {
		logoutAndClose(c)
		return res, err
	}

	msgs, err := fetchUnseen(ctx, c, e.MaxMessages)
	if err != nil {
		logoutAndClose(c)
		return res, err
	}

	var postings []domain.Posting
	var parsed []imap.UID

	for _, m := range msgs {
		if !subjectMatches(m.Subject, e.SearchSubjectAny) {
			continue
		}
		htmlBody := extractHTMLPart(m.Raw)
		if htmlBody == "" {
			continue
		}
		jobs, perr := parseAlertHTML(htmlBody)
		if perr != nil {
			log.Printf("[emailalert] uid=%d parse err: %v", m.UID, perr)
			continue
		}
		if len(jobs) == 0 {
			continue
		}
		postings = append(postings, jobs...)
		parsed = append(parsed, m.UID)
	}

	log.Printf("[emailalert] messages=%d parsed=%d postings=%d", len(msgs), len(parsed), len(postings))

	res.Postings = postings
	res.Finalize = func(context.Context) error {
		defer logoutAndClose(c)
		return markSeen(c, parsed)
	}
	return res, nil
}

func subjectMatches(subject string, any []string) bool {
	if len(any) == 0 {
		return true
	}
	low := strings.ToLower(subject)
	for _, s := range any {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && strings.Contains(low, s) {
			return true
		}
	}
	return false
}
