package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustedApplyHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"boards-api.greenhouse.io", true},
		{"jobs.lever.co", true},
		{"acme.wd1.myworkdayjobs.com", true},
		{"jobs.smartrecruiters.com", true},
		{"GREENHOUSE.IO", true},
		{"greenhouse.io.evil.example", false},
		{"notgreenhouse.io", false},
		{"acme.example", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TrustedApplyHost(tt.host), tt.host)
	}
}

func TestTrustedApplyURL(t *testing.T) {
	assert.True(t, TrustedApplyURL("https://boards-api.greenhouse.io/v1/boards/acme/jobs/1"))
	assert.False(t, TrustedApplyURL("https://careers.acme.example/jobs/1"))
	assert.False(t, TrustedApplyURL("::not a url"))
}

func TestRootDomain(t *testing.T) {
	assert.Equal(t, "acme.example", RootDomain("careers.eu.acme.example"))
	assert.Equal(t, "acme.example", RootDomain("acme.example"))
	assert.Equal(t, "localhost", RootDomain("localhost"))
	assert.Equal(t, "192.168.1.10", RootDomain("192.168.1.10"))
}
