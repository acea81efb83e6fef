package domain

// Read models produced by the presenter. Renderers (SVG page, PNG) consume these.

type BarSegment struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

type BarSeries struct {
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	Values []BarSegment `json:"values"` // aligned with BarChart.Categories
}

type BarChart struct {
	Title       string      `json:"title"`
	XLabel      string      `json:"x_label"`
	YLabel      string      `json:"y_label"`
	LegendTitle string      `json:"legend_title"`
	Categories  []string    `json:"categories"`
	Series      []BarSeries `json:"series"`
}

func (c BarChart) Empty() bool { return len(c.Categories) == 0 }

// Totals returns the stacked height of each category.
func (c BarChart) Totals() []float64 {
	out := make([]float64, len(c.Categories))
	for _, s := range c.Series {
		for i, v := range s.Values {
			out[i] += v.Value
		}
	}
	return out
}

type ScatterPoint struct {
	Town   string  `json:"town"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Radius float64 `json:"radius"`
}

type ScatterGroup struct {
	Name   string         `json:"name"`
	Color  string         `json:"color"`
	Class  Indicator      `json:"class"`
	Points []ScatterPoint `json:"points"`
}

type ScatterChart struct {
	Title       string         `json:"title"`
	XLabel      string         `json:"x_label"`
	YLabel      string         `json:"y_label"`
	SizeLabel   string         `json:"size_label"`
	LegendTitle string         `json:"legend_title"`
	Groups      []ScatterGroup `json:"groups"`
}

func (c ScatterChart) Empty() bool {
	for _, g := range c.Groups {
		if len(g.Points) > 0 {
			return false
		}
	}
	return true
}

type Commentary struct {
	Title   string   `json:"title"`
	Intro   string   `json:"intro"`
	Bullets []string `json:"bullets"`
}

type DashboardView struct {
	Bar        BarChart     `json:"bar"`
	Scatter    ScatterChart `json:"scatter"`
	Commentary Commentary   `json:"commentary"`
}

// DashboardPage is everything one render of the dashboard needs.
type DashboardPage struct {
	Title       string        `json:"title"`
	View        DashboardView `json:"view"`
	TownOptions []string      `json:"town_options"`
	Selection   Selection     `json:"selection"`
	Rows        int           `json:"rows"`
	Meta        DatasetMeta   `json:"meta"`
}
