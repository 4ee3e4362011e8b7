package emailalert

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"ghostcheck-engine/internal/domain"
	"ghostcheck-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*(?:year|yr)`)
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
)

// parseAlertHTML merges the several anchors an alert template points at the
// same job (logo, card body, title) into one posting per job id.
func parseAlertHTML(htmlBody string) ([]domain.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*domain.Posting{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || util.IsNoiseURL(href) {
			return
		}

		lh := strings.ToLower(href)
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}

		jobURL := util.CanonicalURL(unwrapRedirect(href))
		if jobURL == "" {
			return
		}

		key := jobURL
		if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
			key = "view:" + m[1]
		}

		p, ok := byID[key]
		if !ok {
			p = &domain.Posting{
				ApplyURL:  jobURL,
				SourceURL: jobURL,
				Source:    "emailalert",
			}
			byID[key] = p
			order = append(order, key)
		}

		if t := util.CleanText(a.Text()); t != "" && !util.LooksLikeJunkTitle(t) && len(t) > len(p.Title) {
			p.Title = t
		}

		// the card container around the anchor carries company/location/salary
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		card.Find("p").Each(func(_ int, sel *goquery.Selection) {
			t := util.CleanText(sel.Text())
			if t == "" {
				return
			}
			// "Company · Location"
			if p.Company == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				p.Company = strings.TrimSpace(parts[0])
				p.LocationRaw = util.NormalizeLocation(parts[1])
			}
		})

		if p.SalaryMin == 0 {
			if blob := util.CleanText(card.Text()); blob != "" {
				if m := reSalary.FindString(blob); m != "" {
					p.SalaryMin, p.SalaryMax = util.ParseSalaryRange(m)
				}
			}
		}
	})

	out := make([]domain.Posting, 0, len(byID))
	for _, key := range order {
		p := byID[key]
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Company) == "" {
			continue
		}
		p.LocationType = util.InferLocationType(p.LocationRaw, p.Title, "")
		out = append(out, *p)
	}
	return out, nil
}

// unwrapRedirect follows url=/q= wrapper params alert links hide behind.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if raw := u.Query().Get("url"); raw != "" {
		if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
			return uu.String()
		}
	}
	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			if uu, err := url.Parse(q); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}
	return href
}

// extractHTMLPart walks the MIME tree and returns the largest text/html part.
func extractHTMLPart(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	body, _ := io.ReadAll(io.LimitReader(msg.Body, 6<<20))
	_, htmlPart := textParts(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), body)
	return htmlPart
}

func textParts(ct, cte string, body []byte) (plain, htmlPart string) {
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeCTE(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeCTE(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			b, _ := io.ReadAll(io.LimitReader(part, 6<<20))
			pl, ht := textParts(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), b)
			if len(pl) > len(plain) {
				plain = pl
			}
			if len(ht) > len(htmlPart) {
				htmlPart = ht
			}
		}
		return plain, htmlPart
	}

	s := string(decodeCTE(body, cte))
	if strings.HasPrefix(mediaType, "text/html") {
		return "", s
	}
	return s, ""
}

func decodeCTE(b []byte, cte string) []byte {
	switch strings.ToLower(strings.TrimSpace(cte)) {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	default:
		return b
	}
}
