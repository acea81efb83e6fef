package domain

import "time"

// Indicator is the tri-valued reading of the "initiative exists" column.
type Indicator int8

const (
	IndicatorUnknown Indicator = -1
	IndicatorNo      Indicator = 0
	IndicatorYes     Indicator = 1
)

func (i Indicator) String() string {
	switch i {
	case IndicatorYes:
		return "yes"
	case IndicatorNo:
		return "no"
	default:
		return "unknown"
	}
}

// Town is one dataset row.
type Town struct {
	Name         string    `json:"town"`
	Hotels       int       `json:"hotels"`
	Restaurants  int       `json:"restaurants"`
	Cafes        int       `json:"cafes"`
	GuestHouses  int       `json:"guest_houses"`
	Initiative   Indicator `json:"initiative"`
	TourismIndex *float64  `json:"tourism_index,omitempty"` // nil when the source cell is blank
}

type DatasetMeta struct {
	SourceURL string    `json:"source_url"`
	ETag      string    `json:"etag,omitempty"`
	SHA1      string    `json:"sha1"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Dataset is immutable once loaded; derived views get their own Rows slice.
type Dataset struct {
	Rows []Town      `json:"rows"`
	Meta DatasetMeta `json:"meta"`
}

func (d Dataset) Len() int { return len(d.Rows) }

// Towns returns distinct town names in first-seen order.
func (d Dataset) Towns() []string {
	seen := make(map[string]struct{}, len(d.Rows))
	out := make([]string, 0, len(d.Rows))
	for _, r := range d.Rows {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r.Name)
	}
	return out
}

// RawCSV is an undecoded response body plus what the server said about it.
type RawCSV struct {
	URL  string
	ETag string
	Body []byte
}
