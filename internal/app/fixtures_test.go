package app_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"tourism_dashboard/internal/domain"
)

const header = "Town,Total number of hotels,Total number of restaurants,Total number of cafes," +
	"Total number of guest houses," +
	"Existence of initiatives and projects in the past five years to improve the tourism sector - exists," +
	"Tourism Index"

func csvOf(rows ...string) []byte {
	return []byte(header + "\n" + strings.Join(rows, "\n") + "\n")
}

// twoTowns is the A/B dataset used by the end-to-end scenarios.
var twoTowns = csvOf(
	"A,2,1,3,0,1,50",
	"B,0,4,1,2,0,80",
)

func pfloat(f float64) *float64 { return &f }

func townAB() domain.Dataset {
	return domain.Dataset{Rows: []domain.Town{
		{Name: "A", Hotels: 2, Restaurants: 1, Cafes: 3, GuestHouses: 0, Initiative: domain.IndicatorYes, TourismIndex: pfloat(50)},
		{Name: "B", Hotels: 0, Restaurants: 4, Cafes: 1, GuestHouses: 2, Initiative: domain.IndicatorNo, TourismIndex: pfloat(80)},
	}}
}

// mixed has repeated towns and an unknown indicator.
func mixed() domain.Dataset {
	return domain.Dataset{Rows: []domain.Town{
		{Name: "Batroun", Hotels: 5, Restaurants: 20, Cafes: 12, Initiative: domain.IndicatorYes, TourismIndex: pfloat(70)},
		{Name: "Zahle", Hotels: 2, Restaurants: 9, Cafes: 4, Initiative: domain.IndicatorNo, TourismIndex: pfloat(40)},
		{Name: "Jezzine", Hotels: 1, Restaurants: 3, Cafes: 1, Initiative: domain.IndicatorUnknown},
		{Name: "Zahle", Hotels: 1, Restaurants: 1, Cafes: 1, GuestHouses: 1, Initiative: domain.IndicatorYes, TourismIndex: pfloat(10)},
		{Name: "Tyre", Hotels: 0, Restaurants: 6, Cafes: 2, GuestHouses: 3, Initiative: domain.IndicatorNo, TourismIndex: pfloat(55)},
	}}
}

// ---- fakes ----

type fakeSource struct {
	mu   sync.Mutex
	body []byte
	err  error
	hits int32
	gate chan struct{} // when non-nil, Fetch blocks until closed
}

func (f *fakeSource) Fetch(ctx context.Context) (domain.RawCSV, error) {
	atomic.AddInt32(&f.hits, 1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.RawCSV{}, f.err
	}
	return domain.RawCSV{URL: testURL, Body: f.body}, nil
}

func (f *fakeSource) Hits() int { return int(atomic.LoadInt32(&f.hits)) }

func (f *fakeSource) set(body []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body, f.err = body, err
}

type fakeLoader struct {
	ds  domain.Dataset
	err error
}

func (f *fakeLoader) Load(ctx context.Context) (domain.Dataset, error) { return f.ds, f.err }
