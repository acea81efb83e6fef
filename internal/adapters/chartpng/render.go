// Package chartpng renders dashboard chart models to PNG with gonum/plot.
package chartpng

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"tourism_dashboard/internal/adapters/observability"
	"tourism_dashboard/internal/domain"
)

const (
	dpi         = 96
	rotateAfter = 8 // categories before x tick labels are turned vertical
)

type Renderer struct {
	width, height vg.Length
}

// New returns a renderer producing images of the given pixel size.
func New(widthPx, heightPx int) *Renderer {
	if widthPx <= 0 {
		widthPx = 1000
	}
	if heightPx <= 0 {
		heightPx = 600
	}
	return &Renderer{width: px(float64(widthPx)), height: px(float64(heightPx))}
}

func px(v float64) vg.Length { return vg.Length(v) * vg.Inch / dpi }

// Bar draws the four facility series stacked on each town.
func (r *Renderer) Bar(c domain.BarChart) ([]byte, error) {
	start := time.Now()
	defer func() { observability.ObserveRender("infrastructure", "png", time.Since(start)) }()

	p := newPlot(c.Title, c.XLabel, c.YLabel)
	if c.Empty() {
		return r.encode(noData(p))
	}

	width := barWidth(len(c.Categories))
	var below *plotter.BarChart
	base := make([]float64, len(c.Categories))
	var lxy plotter.XYs
	var ltext []string
	for _, s := range c.Series {
		vals := make(plotter.Values, len(s.Values))
		for i, seg := range s.Values {
			vals[i] = seg.Value
			if seg.Value > 0 {
				lxy = append(lxy, plotter.XY{X: float64(i), Y: base[i] + seg.Value/2})
				ltext = append(ltext, seg.Label)
			}
			base[i] += seg.Value
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return nil, fmt.Errorf("bar series %q: %w", s.Name, err)
		}
		bars.Color = hexColor(s.Color)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	if len(lxy) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: lxy, Labels: ltext})
		if err != nil {
			return nil, fmt.Errorf("bar labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
			labels.TextStyle[i].Color = color.White
		}
		p.Add(labels)
	}

	p.NominalX(c.Categories...)
	if len(c.Categories) > rotateAfter {
		p.X.Tick.Label.Rotation = math.Pi / 2
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0
	p.Legend.Top = true
	p.Legend.Left = true
	return r.encode(p)
}

// Scatter draws one bubble per town, one plotter per initiative class.
func (r *Renderer) Scatter(c domain.ScatterChart) ([]byte, error) {
	start := time.Now()
	defer func() { observability.ObserveRender("cafes-restaurants", "png", time.Since(start)) }()

	p := newPlot(c.Title, c.XLabel, c.YLabel)
	if c.Empty() {
		return r.encode(noData(p))
	}

	maxX, maxY := 0.0, 0.0
	for _, g := range c.Groups {
		if len(g.Points) == 0 {
			continue
		}
		pts := g.Points
		xys := make(plotter.XYs, len(pts))
		names := make([]string, len(pts))
		for i, pt := range pts {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
			names[i] = pt.Town
			maxX, maxY = math.Max(maxX, pt.X), math.Max(maxY, pt.Y)
		}

		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter group %q: %w", g.Name, err)
		}
		col := withAlpha(hexColor(g.Color), 0xb0)
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: col, Radius: px(pts[i].Radius), Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
		p.Legend.Add(g.Name, sc)

		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
		if err != nil {
			return nil, fmt.Errorf("scatter labels: %w", err)
		}
		labels.Offset = vg.Point{X: px(4), Y: px(4)}
		p.Add(labels)
	}

	// leave room for the largest bubbles
	p.X.Min, p.Y.Min = 0, 0
	p.X.Max = maxX*1.15 + 1
	p.Y.Max = maxY*1.15 + 1
	p.Legend.Top = true
	return r.encode(p)
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

// noData turns p into an empty frame with a centered notice.
func noData(p *plot.Plot) *plot.Plot {
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{"No data for the current filters"},
	})
	if err == nil {
		l.TextStyle[0].XAlign = draw.XCenter
		l.TextStyle[0].YAlign = draw.YCenter
		p.Add(l)
	}
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	return p
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func barWidth(n int) vg.Length {
	w := 600 / float64(max(n, 1))
	return px(math.Max(4, math.Min(w, 60)))
}

// hexColor parses "#RRGGBB"; anything else falls back to gray.
func hexColor(s string) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		return color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
