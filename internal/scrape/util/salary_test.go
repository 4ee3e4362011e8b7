package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSalaryRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMin int
		wantMax int
	}{
		{"k shorthand", "$70k", 70000, 70000},
		{"full range", "$70,000 - $90,000", 70000, 90000},
		{"plain integer", "120000", 120000, 120000},
		{"range with yr suffix", "$120K/yr - $160K/yr", 120000, 160000},
		{"reversed range is normalized", "$90k - $70k", 70000, 90000},
		{"uppercase K", "$85K", 85000, 85000},
		{"millions", "$1.2M", 1200000, 1200000},
		{"small numbers ignored", "up to 40 hours a week", 0, 0},
		{"garbage", "competitive salary", 0, 0},
		{"empty", "", 0, 0},
		{"embedded in prose", "We pay between $110,000 and $140,000 depending on level", 110000, 140000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := ParseSalaryRange(tt.in)
			assert.Equal(t, tt.wantMin, min, "min")
			assert.Equal(t, tt.wantMax, max, "max")
		})
	}
}
