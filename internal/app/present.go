package app

import (
	"math"
	"strconv"

	"tourism_dashboard/internal/domain"
)

const (
	minBubbleRadius = 6.0
	maxBubbleRadius = 30.0
)

type facility struct {
	name  string
	color string
	count func(domain.Town) int
}

// Stack order, bottom to top.
var facilities = []facility{
	{"Total number of hotels", "#4F46E5", func(t domain.Town) int { return t.Hotels }},
	{"Total number of restaurants", "#10B981", func(t domain.Town) int { return t.Restaurants }},
	{"Total number of cafes", "#F59E0B", func(t domain.Town) int { return t.Cafes }},
	{"Total number of guest houses", "#EF4444", func(t domain.Town) int { return t.GuestHouses }},
}

var initiativeClasses = []struct {
	class domain.Indicator
	name  string
	color string
}{
	{domain.IndicatorYes, "With initiatives", "#8B5CF6"},
	{domain.IndicatorNo, "Without initiatives", "#06B6D4"},
	{domain.IndicatorUnknown, "Unknown", "#9CA3AF"},
}

var commentary = domain.Commentary{
	Title: "Context & Insights",
	Intro: "This dashboard explores tourism infrastructure (hotels, guest houses, cafes, restaurants) " +
		"across towns, and how initiatives in the past five years impact the Tourism Index.",
	Bullets: []string{
		`The "Tourism Infrastructure by Town" chart covers the overall diversity of hotels, guest houses, restaurants, and cafes.`,
		`The chart right below titled "Cafes vs Restaurants per Town" showcases the influence of the local initiatives in the last 5 years (like opening restaurants & cafes) to the tourism index per town.`,
		"Towns with a high tourism index but limited tourism infrastructure could indicate great prospects for new business ventures under the hospitality industry (including restaurants & cafes).",
		"Towns with initiatives but low tourism index may indicate the need for town level marketing interventions to reach a wider audience and greater mass appeal.",
	},
}

// Present builds the dashboard read model. It depends on ds only.
func Present(ds domain.Dataset) domain.DashboardView {
	return domain.DashboardView{
		Bar:        BuildBarChart(ds),
		Scatter:    BuildScatterChart(ds),
		Commentary: Commentary(),
	}
}

// Commentary returns a fresh copy of the static text block.
func Commentary() domain.Commentary {
	c := commentary
	c.Bullets = append([]string(nil), commentary.Bullets...)
	return c
}

// BuildBarChart stacks the four facility counts per town. Repeated town rows
// add into the category of their first occurrence.
func BuildBarChart(ds domain.Dataset) domain.BarChart {
	towns := ds.Towns()
	pos := make(map[string]int, len(towns))
	for i, t := range towns {
		pos[t] = i
	}

	sums := make([][]int, len(facilities))
	for f := range facilities {
		sums[f] = make([]int, len(towns))
	}
	for _, r := range ds.Rows {
		i := pos[r.Name]
		for f, fac := range facilities {
			sums[f][i] += fac.count(r)
		}
	}

	series := make([]domain.BarSeries, len(facilities))
	for f, fac := range facilities {
		vals := make([]domain.BarSegment, len(towns))
		for i, n := range sums[f] {
			vals[i] = domain.BarSegment{Value: float64(n), Label: strconv.Itoa(n)}
		}
		series[f] = domain.BarSeries{Name: fac.name, Color: fac.color, Values: vals}
	}

	return domain.BarChart{
		Title:       "Towns split into 4 infrastructure categories",
		XLabel:      "Town",
		YLabel:      "Number of Facilities",
		LegendTitle: "Facility Type",
		Categories:  towns,
		Series:      series,
	}
}

// BuildScatterChart places one bubble per row: cafes on x, restaurants on y,
// area proportional to the tourism index, grouped by initiative class.
func BuildScatterChart(ds domain.Dataset) domain.ScatterChart {
	maxSize := 0.0
	for _, r := range ds.Rows {
		if s := bubbleSize(r); s > maxSize {
			maxSize = s
		}
	}

	byClass := make(map[domain.Indicator][]domain.ScatterPoint)
	for _, r := range ds.Rows {
		size := bubbleSize(r)
		byClass[r.Initiative] = append(byClass[r.Initiative], domain.ScatterPoint{
			Town:   r.Name,
			X:      float64(r.Cafes),
			Y:      float64(r.Restaurants),
			Size:   size,
			Radius: BubbleRadius(size, maxSize),
		})
	}

	groups := make([]domain.ScatterGroup, 0, len(initiativeClasses))
	for _, c := range initiativeClasses {
		pts := byClass[c.class]
		if len(pts) == 0 {
			continue
		}
		groups = append(groups, domain.ScatterGroup{Name: c.name, Color: c.color, Class: c.class, Points: pts})
	}

	return domain.ScatterChart{
		Title:       "In Relation to Tourism Index & Initiatives",
		XLabel:      "Total number of cafes",
		YLabel:      "Total number of restaurants",
		SizeLabel:   "Tourism Index",
		LegendTitle: "Initiatives in the past five years",
		Groups:      groups,
	}
}

func bubbleSize(t domain.Town) float64 {
	if t.TourismIndex == nil || *t.TourismIndex <= 0 {
		return 0
	}
	return *t.TourismIndex
}

// BubbleRadius maps size to a pixel radius with area proportional to size.
// Non-positive sizes get the minimum radius.
func BubbleRadius(size, maxSize float64) float64 {
	if size <= 0 || maxSize <= 0 || math.IsNaN(size) {
		return minBubbleRadius
	}
	return minBubbleRadius + (maxBubbleRadius-minBubbleRadius)*math.Sqrt(math.Min(size/maxSize, 1))
}
