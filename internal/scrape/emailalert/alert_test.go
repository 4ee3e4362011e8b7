package emailalert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertFixture = `
<html><body>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=abc&refId=def">
      Backend Engineer
    </a>
    <p>Acme Corp · Berlin, Germany</p>
    <p>$120,000 - $150,000/yr</p>
  </td></tr>
</table>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=logo"><img src="logo.png"/></a>
  </td></tr>
</table>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4099999999/">Data Engineer (Remote)</a>
    <p>Globex · Remote</p>
  </td></tr>
</table>
<a href="https://www.linkedin.com/e/unsubscribe?x=1">Unsubscribe</a>
</body></html>
`

func TestParseAlertHTML(t *testing.T) {
	jobs, err := parseAlertHTML(alertFixture)
	require.NoError(t, err)
	require.Len(t, jobs, 2, "the logo anchor merges into the first job")

	first := jobs[0]
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "Berlin, Germany", first.LocationRaw)
	assert.Equal(t, 120000, first.SalaryMin)
	assert.Equal(t, 150000, first.SalaryMax)
	assert.Contains(t, first.ApplyURL, "/jobs/view/4012345678")
	assert.NotContains(t, first.ApplyURL, "trackingId")
	assert.Equal(t, "emailalert", first.Source)

	second := jobs[1]
	assert.Equal(t, "Data Engineer (Remote)", second.Title)
	assert.Equal(t, "Globex", second.Company)
	assert.Equal(t, "REMOTE", second.LocationType)
}

func TestParseAlertHTMLSkipsAnonymousCards(t *testing.T) {
	jobs, err := parseAlertHTML(`<a href="https://www.linkedin.com/jobs/view/1/">Some Job</a>`)
	require.NoError(t, err)
	assert.Empty(t, jobs, "no company means no posting")
}

func TestUnwrapRedirect(t *testing.T) {
	got := unwrapRedirect("https://tracker.example/r?url=https%3A%2F%2Fjobs.example%2F1")
	assert.Equal(t, "https://jobs.example/1", got)

	got = unwrapRedirect("https://www.google.com/url?q=https%3A%2F%2Fjobs.example%2F2")
	assert.Equal(t, "https://jobs.example/2", got)

	plain := "https://jobs.example/3"
	assert.Equal(t, plain, unwrapRedirect(plain))
}

func TestSubjectMatches(t *testing.T) {
	any := []string{"job alert", "new jobs"}
	assert.True(t, subjectMatches("Your daily Job Alert: 12 new roles", any))
	assert.True(t, subjectMatches("30+ NEW JOBS for you", any))
	assert.False(t, subjectMatches("Your invoice is ready", any))
	assert.True(t, subjectMatches("anything", nil), "no filter means everything matches")
}
