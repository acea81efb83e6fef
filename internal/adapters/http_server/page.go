package httpserver

import (
	"html/template"
	"math"
	"net/url"

	"tourism_dashboard/internal/domain"
)

type townOption struct {
	Name     string
	Selected bool
}

type pageData struct {
	Title       string
	Commentary  domain.Commentary
	Towns       []townOption
	Initiative  domain.InitiativeMode
	Modes       []domain.InitiativeMode
	Rows        int
	Meta        domain.DatasetMeta
	Bar         barSVG
	Scatter     scatterSVG
	BarPNG      template.URL
	ScatterPNG  template.URL
	JSONHref    template.URL
	BarHeading  string
	ScatHeading string
}

func newPageData(p domain.DashboardPage, q url.Values) pageData {
	selected := make(map[string]bool, len(p.Selection.Towns))
	for _, t := range p.Selection.Towns {
		selected[t] = true
	}
	towns := make([]townOption, len(p.TownOptions))
	for i, t := range p.TownOptions {
		towns[i] = townOption{Name: t, Selected: selected[t]}
	}
	qs := ""
	if enc := q.Encode(); enc != "" {
		qs = "?" + enc
	}
	return pageData{
		Title:       p.Title,
		Commentary:  p.View.Commentary,
		Towns:       towns,
		Initiative:  p.Selection.Initiative,
		Modes:       []domain.InitiativeMode{domain.InitiativeAll, domain.InitiativeYes, domain.InitiativeNo},
		Rows:        p.Rows,
		Meta:        p.Meta,
		Bar:         layoutBar(p.View.Bar),
		Scatter:     layoutScatter(p.View.Scatter),
		BarPNG:      template.URL("/v1/charts/infrastructure.png" + qs),
		ScatterPNG:  template.URL("/v1/charts/cafes-restaurants.png" + qs),
		JSONHref:    template.URL("/v1/dashboard" + qs),
		BarHeading:  "Tourism Infrastructure by Town",
		ScatHeading: "Cafes vs Restaurants per Town",
	}
}

var pageTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"f":    func(v float64) string { return fmtNum(math.Round(v*10) / 10) },
	"half": func(v float64) float64 { return v / 2 },
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { --bg: #fff; --fg: #1a1a2e; --card-bg: #f8f9fa; --border: #dee2e6; --muted: #6c757d; --accent: #0d6efd; }
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--fg); line-height: 1.5; }
.layout { display: grid; grid-template-columns: 260px 1fr; min-height: 100vh; }
@media (max-width: 900px) { .layout { grid-template-columns: 1fr; } }
aside { background: var(--card-bg); border-right: 1px solid var(--border); padding: 1rem; }
aside h2 { font-size: 1rem; margin-bottom: .75rem; }
aside label { display: block; font-size: .85rem; margin: .5rem 0 .25rem; }
aside select { width: 100%; min-height: 14rem; border: 1px solid var(--border); border-radius: 4px; }
aside fieldset { border: 0; margin-top: .75rem; }
aside button { margin-top: 1rem; padding: .4rem .9rem; border: 1px solid var(--accent); background: var(--accent); color: #fff; border-radius: 4px; cursor: pointer; }
main { padding: 1.25rem; max-width: 1100px; }
header h1 { font-size: 1.5rem; margin-bottom: .25rem; }
header p { color: var(--muted); font-size: .9rem; }
.chart-box { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: 1rem; margin-top: 1.25rem; }
.chart-box h3 { font-size: 1rem; margin-bottom: .5rem; }
.chart-box .links { font-size: .75rem; color: var(--muted); }
svg { width: 100%; height: auto; }
svg text { font-size: 11px; fill: var(--fg); }
svg .seg-label { fill: #fff; text-anchor: middle; dominant-baseline: middle; }
svg .axis { stroke: var(--muted); }
svg .grid { stroke: var(--border); }
svg .nodata { font-size: 14px; fill: var(--muted); text-anchor: middle; }
.legend { display: flex; flex-wrap: wrap; gap: .75rem; font-size: .8rem; margin-top: .5rem; }
.legend b { font-weight: 600; }
.swatch { display: inline-block; width: .8rem; height: .8rem; border-radius: 2px; margin-right: .3rem; vertical-align: middle; }
.insights li { margin: .4rem 0 .4rem 1.25rem; }
footer { color: var(--muted); font-size: .75rem; margin-top: 1.5rem; }
</style>
</head>
<body>
<div class="layout">
<aside>
  <form method="get" action="/">
    <h2>Filters</h2>
    <input type="hidden" name="towns" value="1">
    <label for="town">Select Town(s):</label>
    <select id="town" name="town" multiple>
      {{- range .Towns}}
      <option value="{{.Name}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>
      {{- end}}
    </select>
    <fieldset>
      <legend>Show towns with initiatives?</legend>
      {{- range .Modes}}
      <label><input type="radio" name="initiative" value="{{.}}"{{if eq . $.Initiative}} checked{{end}}> {{.}}</label>
      {{- end}}
    </fieldset>
    <button type="submit">Apply</button>
  </form>
</aside>
<main>
  <header>
    <h1>📊 {{.Title}}</h1>
    <p>{{.Commentary.Intro}}</p>
  </header>

  <section class="chart-box">
    <h3>🌇 {{.BarHeading}}</h3>
    {{with .Bar}}
    <svg viewBox="0 0 {{f .W}} {{f .H}}" role="img" aria-label="{{.Title}}">
      <text x="{{f .Left}}" y="14">{{.Title}}</text>
      {{- range .YTicks}}
      <line class="grid" x1="{{f $.Bar.Left}}" x2="{{f $.Bar.Right}}" y1="{{f .Pos}}" y2="{{f .Pos}}"/>
      <text x="{{f $.Bar.Left}}" dx="-6" y="{{f .Pos}}" text-anchor="end" dominant-baseline="middle">{{.Label}}</text>
      {{- end}}
      <line class="axis" x1="{{f .Left}}" x2="{{f .Right}}" y1="{{f .Bottom}}" y2="{{f .Bottom}}"/>
      {{- range .Rects}}
      <g><title>{{.Title}}</title>
        <rect x="{{f .X}}" y="{{f .Y}}" width="{{f .W}}" height="{{f .H}}" fill="{{.Color}}"/>
        {{- if .Label}}<text class="seg-label" x="{{f .X}}" dx="{{f (half .W)}}" y="{{f .Y}}" dy="{{f (half .H)}}">{{.Label}}</text>{{end}}
      </g>
      {{- end}}
      {{- range .XTicks}}
      {{- if .Rotate}}
      <text transform="translate({{f .Pos}} {{f $.Bar.Bottom}}) rotate(-60)" dx="-6" dy="10" text-anchor="end">{{.Label}}</text>
      {{- else}}
      <text x="{{f .Pos}}" y="{{f $.Bar.Bottom}}" dy="16" text-anchor="middle">{{.Label}}</text>
      {{- end}}
      {{- end}}
      {{- if .Empty}}
      <text class="nodata" x="{{f (half .W)}}" y="{{f (half .H)}}">No data for the current filters</text>
      {{- end}}
      <text x="12" y="{{f (half .H)}}" transform="rotate(-90 12 {{f (half .H)}})" text-anchor="middle">{{.YLabel}}</text>
    </svg>
    <div class="legend"><b>{{.LegendTitle}}</b>{{range .Legend}}<span><i class="swatch" style="background: {{.Color}}"></i>{{.Name}}</span>{{end}}</div>
    {{end}}
    <p class="links"><a href="{{.BarPNG}}">PNG</a></p>
  </section>

  <section class="chart-box">
    <h3>🥐 {{.ScatHeading}}</h3>
    {{with .Scatter}}
    <svg viewBox="0 0 {{f .W}} {{f .H}}" role="img" aria-label="{{.Title}}">
      <text x="{{f .Left}}" y="14">{{.Title}}</text>
      {{- range .YTicks}}
      <line class="grid" x1="{{f $.Scatter.Left}}" x2="{{f $.Scatter.Right}}" y1="{{f .Pos}}" y2="{{f .Pos}}"/>
      <text x="{{f $.Scatter.Left}}" dx="-6" y="{{f .Pos}}" text-anchor="end" dominant-baseline="middle">{{.Label}}</text>
      {{- end}}
      {{- range .XTicks}}
      <line class="grid" x1="{{f .Pos}}" x2="{{f .Pos}}" y1="{{f $.Scatter.Top}}" y2="{{f $.Scatter.Bottom}}"/>
      <text x="{{f .Pos}}" y="{{f $.Scatter.Bottom}}" dy="16" text-anchor="middle">{{.Label}}</text>
      {{- end}}
      <line class="axis" x1="{{f .Left}}" x2="{{f .Right}}" y1="{{f .Bottom}}" y2="{{f .Bottom}}"/>
      {{- range .Circles}}
      <circle cx="{{f .CX}}" cy="{{f .CY}}" r="{{f .R}}" fill="{{.Color}}" fill-opacity="0.7" stroke="{{.Color}}"><title>{{.Title}}</title></circle>
      {{- end}}
      {{- if .Empty}}
      <text class="nodata" x="{{f (half .W)}}" y="{{f (half .H)}}">No data for the current filters</text>
      {{- end}}
      <text x="{{f (half .W)}}" y="{{f .Bottom}}" dy="40" text-anchor="middle">{{.XLabel}}</text>
      <text x="12" y="{{f (half .H)}}" transform="rotate(-90 12 {{f (half .H)}})" text-anchor="middle">{{.YLabel}}</text>
    </svg>
    <div class="legend"><b>{{.LegendTitle}}</b>{{range .Legend}}<span><i class="swatch" style="background: {{.Color}}"></i>{{.Name}}</span>{{end}}</div>
    {{end}}
    <p class="links"><a href="{{.ScatterPNG}}">PNG</a></p>
  </section>

  <section class="chart-box insights">
    <h3>💡🕵️‍♀️ {{.Commentary.Title}}</h3>
    <ul>
      {{- range .Commentary.Bullets}}
      <li>{{.}}</li>
      {{- end}}
    </ul>
  </section>

  <footer>{{.Rows}} rows shown · source <a href="{{.Meta.SourceURL}}">{{.Meta.SourceURL}}</a> · sha1 {{.Meta.SHA1}} · <a href="{{.JSONHref}}">JSON</a></footer>
</main>
</div>
</body>
</html>
`
