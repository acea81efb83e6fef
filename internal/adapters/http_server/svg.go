package httpserver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tourism_dashboard/internal/domain"
)

// Geometry for the inline SVG charts on the dashboard page. All values are in
// SVG user units; the template only places what is computed here.

const (
	svgWidth  = 960.0
	svgHeight = 440.0
	padLeft   = 64.0
	padRight  = 24.0
	padTop    = 24.0
	padBottom = 110.0
)

type frame struct {
	W, H                     float64
	Left, Right, Top, Bottom float64
	XLabel, YLabel           string
	XTicks, YTicks           []tick
}

type tick struct {
	Pos    float64
	Label  string
	Rotate bool
}

type legendItem struct {
	Name, Color string
}

type rect struct {
	X, Y, W, H float64
	Color      string
	Label      string // printed on the segment when it fits
	Title      string // hover text
}

type circle struct {
	CX, CY, R float64
	Color     string
	Title     string
}

type barSVG struct {
	frame
	Title       string
	LegendTitle string
	Legend      []legendItem
	Rects       []rect
	Empty       bool
}

type scatterSVG struct {
	frame
	Title       string
	LegendTitle string
	Legend      []legendItem
	Circles     []circle
	Empty       bool
}

func newFrame(xLabel, yLabel string) frame {
	return frame{
		W: svgWidth, H: svgHeight,
		Left: padLeft, Right: svgWidth - padRight,
		Top: padTop, Bottom: svgHeight - padBottom,
		XLabel: xLabel, YLabel: yLabel,
	}
}

func (f frame) plotW() float64 { return f.Right - f.Left }
func (f frame) plotH() float64 { return f.Bottom - f.Top }

// yTicks fills YTicks for [0, hi] and returns the axis top value.
func (f *frame) yTicks(hi float64) float64 {
	step, top := niceScale(hi)
	for v := 0.0; v <= top+step/2; v += step {
		f.YTicks = append(f.YTicks, tick{Pos: f.Bottom - v/top*f.plotH(), Label: fmtNum(v)})
	}
	return top
}

func (f *frame) xTicks(hi float64) float64 {
	step, top := niceScale(hi)
	for v := 0.0; v <= top+step/2; v += step {
		f.XTicks = append(f.XTicks, tick{Pos: f.Left + v/top*f.plotW(), Label: fmtNum(v)})
	}
	return top
}

func layoutBar(c domain.BarChart) barSVG {
	out := barSVG{frame: newFrame(c.XLabel, c.YLabel), Title: c.Title, LegendTitle: c.LegendTitle, Empty: c.Empty()}
	for _, s := range c.Series {
		out.Legend = append(out.Legend, legendItem{Name: s.Name, Color: s.Color})
	}
	if out.Empty {
		out.yTicks(0)
		return out
	}

	totals := c.Totals()
	top := out.yTicks(maxOf(totals))

	n := float64(len(c.Categories))
	slot := out.plotW() / n
	bw := math.Min(slot*0.7, 60)
	rotate := len(c.Categories) > 8
	for i, cat := range c.Categories {
		x := out.Left + slot*float64(i) + (slot-bw)/2
		out.XTicks = append(out.XTicks, tick{Pos: x + bw/2, Label: cat, Rotate: rotate})

		base := out.Bottom
		for _, s := range c.Series {
			seg := s.Values[i]
			h := seg.Value / top * out.plotH()
			r := rect{
				X: x, Y: base - h, W: bw, H: h, Color: s.Color,
				Title: fmt.Sprintf("%s\n%s: %s", cat, s.Name, seg.Label),
			}
			if h >= 14 && bw >= 14 {
				r.Label = seg.Label
			}
			out.Rects = append(out.Rects, r)
			base -= h
		}
	}
	return out
}

func layoutScatter(c domain.ScatterChart) scatterSVG {
	out := scatterSVG{frame: newFrame(c.XLabel, c.YLabel), Title: c.Title, LegendTitle: c.LegendTitle, Empty: c.Empty()}
	for _, g := range c.Groups {
		out.Legend = append(out.Legend, legendItem{Name: g.Name, Color: g.Color})
	}
	if out.Empty {
		out.xTicks(0)
		out.yTicks(0)
		return out
	}

	var maxX, maxY float64
	for _, g := range c.Groups {
		for _, p := range g.Points {
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	// headroom so edge bubbles stay inside the frame
	xTop := out.xTicks(maxX * 1.1)
	yTop := out.yTicks(maxY * 1.1)

	for _, g := range c.Groups {
		for _, p := range g.Points {
			out.Circles = append(out.Circles, circle{
				CX:    out.Left + p.X/xTop*out.plotW(),
				CY:    out.Bottom - p.Y/yTop*out.plotH(),
				R:     p.Radius,
				Color: g.Color,
				Title: scatterTitle(c, g, p),
			})
		}
	}
	return out
}

func scatterTitle(c domain.ScatterChart, g domain.ScatterGroup, p domain.ScatterPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Town: %s\n", p.Town)
	fmt.Fprintf(&b, "%s: %s\n", c.XLabel, fmtNum(p.X))
	fmt.Fprintf(&b, "%s: %s\n", c.YLabel, fmtNum(p.Y))
	if p.Size > 0 {
		fmt.Fprintf(&b, "%s: %s\n", c.SizeLabel, fmtNum(p.Size))
	}
	b.WriteString(g.Name)
	return b.String()
}

// niceScale picks a 1/2/5 step giving about five ticks over [0, hi].
func niceScale(hi float64) (step, top float64) {
	if hi <= 0 || math.IsNaN(hi) || math.IsInf(hi, 0) {
		return 1, 1
	}
	raw := hi / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch r := raw / mag; {
	case r <= 1:
		step = mag
	case r <= 2:
		step = 2 * mag
	case r <= 5:
		step = 5 * mag
	default:
		step = 10 * mag
	}
	return step, math.Ceil(hi/step) * step
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, v)
	}
	return m
}

func fmtNum(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
