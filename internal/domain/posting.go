package domain

// Location type for a posting, inferred from source data or free text.
const (
	LocationRemote  = "REMOTE"
	LocationHybrid  = "HYBRID"
	LocationOnsite  = "ONSITE"
	LocationUnknown = "UNKNOWN"
)

// Posting is one job posting as emitted by a source adapter. It stays
// in memory for the duration of a pipeline run; nothing here is persisted
// directly.
type Posting struct {
	Title        string
	Company      string
	LocationRaw  string
	LocationType string // LocationRemote etc.
	SalaryMin    int    // 0 = undisclosed
	SalaryMax    int
	ApplyURL     string
	SourceURL    string
	Source       string // adapter name: remoteok/lever/...
	Description  string
}

// HasSalaryRange reports whether the posting discloses a usable range.
func (p Posting) HasSalaryRange() bool {
	return p.SalaryMin > 0 && p.SalaryMax >= p.SalaryMin
}
