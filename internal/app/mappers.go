package app

import (
	"bytes"
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"tourism_dashboard/internal/domain"
)

/********** source schema **********/

const (
	ColTown         = "Town"
	ColHotels       = "Total number of hotels"
	ColRestaurants  = "Total number of restaurants"
	ColCafes        = "Total number of cafes"
	ColGuestHouses  = "Total number of guest houses"
	ColInitiative   = "Existence of initiatives and projects in the past five years to improve the tourism sector - exists"
	ColTourismIndex = "Tourism Index"
)

var requiredColumns = []string{
	ColTown, ColHotels, ColRestaurants, ColCafes, ColGuestHouses, ColInitiative, ColTourismIndex,
}

// Numeric columns are read as floats so blanks become NaN instead of failing the load.
var columnTypes = map[string]series.Type{
	ColTown:         series.String,
	ColHotels:       series.Float,
	ColRestaurants:  series.Float,
	ColCafes:        series.Float,
	ColGuestHouses:  series.Float,
	ColInitiative:   series.Float,
	ColTourismIndex: series.Float,
}

var utf8BOM = []byte("\xef\xbb\xbf")

/********** CSV -> Dataset **********/

// ParseDataset decodes a fetched CSV into an immutable Dataset.
// Only a missing required column is an error; cell values are never validated.
func ParseDataset(raw domain.RawCSV, fetchedAt time.Time) (domain.Dataset, error) {
	sum := sha1.Sum(raw.Body)
	meta := domain.DatasetMeta{
		SourceURL: raw.URL,
		ETag:      raw.ETag,
		SHA1:      hex.EncodeToString(sum[:]),
		FetchedAt: fetchedAt.UTC(),
	}

	records, err := readRecords(raw.Body)
	if err != nil {
		return domain.Dataset{}, err
	}
	if len(records) == 0 {
		return domain.Dataset{}, fmt.Errorf("%w: %q", domain.ErrMissingColumn, ColTown)
	}
	if err := checkColumns(records[0]); err != nil {
		return domain.Dataset{}, err
	}
	// a header with no rows is an empty dataset, not a failed load
	if len(records) == 1 {
		return domain.Dataset{Rows: []domain.Town{}, Meta: meta}, nil
	}

	df := dataframe.LoadRecords(records, dataframe.WithTypes(columnTypes))
	if df.Err != nil {
		return domain.Dataset{}, fmt.Errorf("parse csv: %w", df.Err)
	}
	return domain.Dataset{Rows: mapTowns(df.Select(requiredColumns)), Meta: meta}, nil
}

// readRecords splits the body into records and trims the padding around
// numeric cells so " 2 " reads as 2. Town names are kept verbatim.
func readRecords(body []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}
	numeric := make([]bool, len(records[0]))
	for i, name := range records[0] {
		t, ok := columnTypes[name]
		numeric[i] = ok && t == series.Float
	}
	for _, rec := range records[1:] {
		for i := range rec {
			if i < len(numeric) && numeric[i] {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
	}
	return records, nil
}

func checkColumns(names []string) error {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, c := range requiredColumns {
		if !have[c] {
			return fmt.Errorf("%w: %q", domain.ErrMissingColumn, c)
		}
	}
	return nil
}

func mapTowns(df dataframe.DataFrame) []domain.Town {
	names := df.Col(ColTown).Records()
	hotels := df.Col(ColHotels).Float()
	restaurants := df.Col(ColRestaurants).Float()
	cafes := df.Col(ColCafes).Float()
	guestHouses := df.Col(ColGuestHouses).Float()
	initiative := df.Col(ColInitiative).Float()
	index := df.Col(ColTourismIndex).Float()

	out := make([]domain.Town, df.Nrow())
	for i := range out {
		out[i] = domain.Town{
			Name:         names[i],
			Hotels:       toCount(hotels[i]),
			Restaurants:  toCount(restaurants[i]),
			Cafes:        toCount(cafes[i]),
			GuestHouses:  toCount(guestHouses[i]),
			Initiative:   toIndicator(initiative[i]),
			TourismIndex: toOptional(index[i]),
		}
	}
	return out
}

// toCount truncates; NaN (blank or non-numeric cell) reads as zero.
func toCount(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

func toIndicator(v float64) domain.Indicator {
	switch v {
	case 1:
		return domain.IndicatorYes
	case 0:
		return domain.IndicatorNo
	default:
		return domain.IndicatorUnknown
	}
}

func toOptional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
