package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"vitals/internal/analysis"
)

const defaultPointColor = "#0EA5E9"

var svgTemplate = template.Must(template.New("chart").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}">
  <title>{{.Title | html}}</title>
  <rect width="100%" height="100%" fill="#FFFFFF"/>
  <line x1="{{num .Padding}}" y1="{{num .Baseline}}" x2="{{num .Right}}" y2="{{num .Baseline}}" stroke="#E5E7EB"/>
{{- range .Labels}}
  <text x="2" y="{{num .Y}}" font-family="sans-serif" font-size="10" fill="#6B7280">{{.Text}}</text>
{{- end}}
  <path d="{{.AreaPath}}" fill="#0EA5E9" fill-opacity="0.15" stroke="none"/>
  <path d="{{.LinePath}}" fill="none" stroke="#0EA5E9" stroke-width="2"/>
{{- range .Points}}
  <circle cx="{{num .X}}" cy="{{num .Y}}" r="3.5" fill="{{.Color}}"><title>{{.Label | html}}: {{num .Value}}</title></circle>
{{- end}}
</svg>
`))

type svgLabel struct {
	Y    float64
	Text string
}

type svgPoint struct {
	X, Y, Value  float64
	Label, Color string
}

type svgData struct {
	Title              string
	Width, Height      float64
	Padding, Right     float64
	Baseline           float64
	LinePath, AreaPath string
	Labels             []svgLabel
	Points             []svgPoint
}

// RenderSVG renders chart geometry as a standalone SVG document
func RenderSVG(title string, geom analysis.ChartGeometry, dims analysis.ChartDimensions) (string, error) {
	data := svgData{
		Title:    title,
		Width:    dims.Width,
		Height:   dims.Height,
		Padding:  dims.Padding,
		Right:    dims.Width - dims.Padding,
		Baseline: geom.Baseline,
		LinePath: geom.LinePath,
		AreaPath: geom.AreaPath,
	}

	if n := len(geom.YAxisLabels); n > 1 {
		step := (dims.Height - 2*dims.Padding) / float64(n-1)
		for i, label := range geom.YAxisLabels {
			data.Labels = append(data.Labels, svgLabel{
				Y:    dims.Padding + float64(i)*step,
				Text: strconv.Itoa(label),
			})
		}
	}

	for _, p := range geom.Points {
		color := p.Color
		if color == "" {
			color = defaultPointColor
		}
		data.Points = append(data.Points, svgPoint{X: p.X, Y: p.Y, Value: p.Value, Label: p.Label, Color: color})
	}

	var b strings.Builder
	if err := svgTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering svg: %w", err)
	}
	return b.String(), nil
}

// ExportSVG writes the chart for metric to dir/<metric>.svg and returns the path
func ExportSVG(dir string, metric analysis.Metric, geom analysis.ChartGeometry, dims analysis.ChartDimensions) (string, error) {
	doc, err := RenderSVG(metric.Label(), geom, dims)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating chart directory: %w", err)
	}

	path := filepath.Join(dir, string(metric)+".svg")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("writing chart: %w", err)
	}
	return path, nil
}
