package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tourism_dashboard/internal/app"
	"tourism_dashboard/internal/domain"
)

func TestParseDataset_TypedRows(t *testing.T) {
	at := time.Date(2024, 9, 2, 11, 59, 53, 0, time.UTC)
	ds, err := app.ParseDataset(domain.RawCSV{URL: "http://x/data.csv", ETag: `"e"`, Body: twoTowns}, at)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(townAB().Rows, ds.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if ds.Meta.SourceURL != "http://x/data.csv" || ds.Meta.ETag != `"e"` || !ds.Meta.FetchedAt.Equal(at) {
		t.Fatalf("unexpected meta: %+v", ds.Meta)
	}
	if len(ds.Meta.SHA1) != 40 {
		t.Fatalf("expected hex sha1, got %q", ds.Meta.SHA1)
	}
}

func TestParseDataset_ExtraColumnsAndBOM(t *testing.T) {
	body := append([]byte("\xef\xbb\xbf"), []byte("refArea,"+header+",Observation URI\n"+
		"http://dbpedia.org/x,Byblos,7,30,18,4,1,91.5,http://obs/1\n")...)
	ds, err := app.ParseDataset(domain.RawCSV{Body: body}, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("rows: %d", ds.Len())
	}
	r := ds.Rows[0]
	if r.Name != "Byblos" || r.Hotels != 7 || r.Restaurants != 30 || r.Cafes != 18 || r.GuestHouses != 4 {
		t.Fatalf("unexpected row: %+v", r)
	}
	if r.TourismIndex == nil || *r.TourismIndex != 91.5 {
		t.Fatalf("unexpected tourism index: %v", r.TourismIndex)
	}
}

func TestParseDataset_BlankCells(t *testing.T) {
	ds, err := app.ParseDataset(domain.RawCSV{Body: csvOf(
		"A,,1,2,3,,",
		"B,1,1,1,1,2,10",
	)}, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a, b := ds.Rows[0], ds.Rows[1]
	if a.Hotels != 0 || a.Initiative != domain.IndicatorUnknown || a.TourismIndex != nil {
		t.Fatalf("blank cells not defaulted: %+v", a)
	}
	if b.Initiative != domain.IndicatorUnknown {
		t.Fatalf("indicator 2 should be unknown, got %v", b.Initiative)
	}
}

func TestParseDataset_MissingColumn(t *testing.T) {
	_, err := app.ParseDataset(domain.RawCSV{Body: []byte("Town,Tourism Index\nA,50\n")}, time.Now())
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParseDataset_HeaderOnly(t *testing.T) {
	ds, err := app.ParseDataset(domain.RawCSV{Body: []byte(header + "\n")}, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Len() != 0 || len(ds.Towns()) != 0 {
		t.Fatalf("expected empty dataset, got %d rows", ds.Len())
	}
	if len(ds.Meta.SHA1) != 40 {
		t.Fatalf("meta not filled: %+v", ds.Meta)
	}

	_, err = app.ParseDataset(domain.RawCSV{Body: []byte("Town,Tourism Index\n")}, time.Now())
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("header-only body still needs every column, got %v", err)
	}
}

func TestParseDataset_PaddedNumericCells(t *testing.T) {
	ds, err := app.ParseDataset(domain.RawCSV{Body: csvOf("C, 2 ,1,1,1, 1 , 5")}, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := ds.Rows[0]
	if r.Name != "C" || r.Hotels != 2 || r.Initiative != domain.IndicatorYes {
		t.Fatalf("padded cells misread: %+v", r)
	}
	if r.TourismIndex == nil || *r.TourismIndex != 5 {
		t.Fatalf("padded tourism index misread: %v", r.TourismIndex)
	}
	if got := app.Filter(ds, domain.Selection{AllTowns: true, Initiative: domain.InitiativeYes}); got.Len() != 1 {
		t.Fatalf("padded Yes row dropped by the Yes filter")
	}
}
