package verify

import (
	"strings"
	"testing"

	"ghostcheck-engine/internal/domain"

	"github.com/stretchr/testify/assert"
)

func cleanPosting() domain.Posting {
	return domain.Posting{
		Title:       "Backend Engineer",
		Company:     "Acme Corp",
		ApplyURL:    "https://boards-api.greenhouse.io/v1/boards/acme/jobs/1",
		Description: strings.Repeat("We build payment infrastructure in Go. ", 10),
	}
}

func TestScanFlags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Posting)
		want   []string
	}{
		{
			name:   "clean posting",
			mutate: func(p *domain.Posting) {},
			want:   nil,
		},
		{
			name: "guaranteed income",
			mutate: func(p *domain.Posting) {
				p.Description += " Guaranteed income of $5000 monthly!"
			},
			want: []string{"guaranteed-income"},
		},
		{
			name: "urgency language",
			mutate: func(p *domain.Posting) {
				p.Title = "URGENT HIRING: Backend Engineer"
			},
			want: []string{"urgency"},
		},
		{
			name: "unrealistic per-day pay",
			mutate: func(p *domain.Posting) {
				p.Description += " Earn $500 per day from home."
			},
			want: []string{"unrealistic-pay"},
		},
		{
			name: "upfront fee",
			mutate: func(p *domain.Posting) {
				p.Description += " A small registration fee applies."
			},
			want: []string{"upfront-fee"},
		},
		{
			name: "ssn request",
			mutate: func(p *domain.Posting) {
				p.Description += " Send your SSN to apply."
			},
			want: []string{"personal-info"},
		},
		{
			name: "mlm phrasing",
			mutate: func(p *domain.Posting) {
				p.Description += " Be your own boss with unlimited earning potential."
			},
			want: []string{"mlm"},
		},
		{
			name: "wire transfer",
			mutate: func(p *domain.Posting) {
				p.Description += " Payment via Western Union."
			},
			want: []string{"wire-transfer"},
		},
		{
			name: "salary bait",
			mutate: func(p *domain.Posting) {
				p.SalaryMin = 250000
				p.SalaryMax = 300000
			},
			want: []string{"unrealistic-salary"},
		},
		{
			name: "salary at the threshold is fine",
			mutate: func(p *domain.Posting) {
				p.SalaryMin = 200000
			},
			want: nil,
		},
		{
			name: "vague company literal",
			mutate: func(p *domain.Posting) {
				p.Company = "Confidential"
			},
			want: []string{"vague-company"},
		},
		{
			name: "company name too short",
			mutate: func(p *domain.Posting) {
				p.Company = "AB"
			},
			want: []string{"vague-company"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cleanPosting()
			tt.mutate(&p)
			assert.Equal(t, tt.want, ScanFlags(p))
		})
	}
}

func TestScanFlagsOrderIsStable(t *testing.T) {
	p := cleanPosting()
	p.Title = "Urgent hiring"
	p.Description = "Guaranteed income, just pay the training fee."
	p.Company = "Confidential"
	p.SalaryMin = 300000

	want := []string{"urgency", "guaranteed-income", "upfront-fee", "unrealistic-salary", "vague-company"}
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, ScanFlags(p))
	}
}
