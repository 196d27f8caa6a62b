package analysis

import (
	"math"
	"strconv"
	"strings"
)

// Headroom above the max and footroom below the min so extrema are not clipped
const (
	chartHeadroom = 1.1
	chartFootroom = 0.9
	yAxisTicks    = 5
)

// DataPoint is one value to plot along with its axis label
type DataPoint struct {
	Value float64
	Label string
	Color string
}

// Point is a DataPoint mapped into pixel space. Y grows downward.
type Point struct {
	DataPoint
	X float64
	Y float64
}

// Vec is a 2D coordinate in chart space
type Vec struct {
	X float64
	Y float64
}

// Segment is one cubic Bézier piece of the curve between adjacent points
type Segment struct {
	From     Vec
	Control1 Vec
	Control2 Vec
	To       Vec
}

// At evaluates the segment at parameter t in [0, 1]
func (s Segment) At(t float64) Vec {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Vec{
		X: a*s.From.X + b*s.Control1.X + c*s.Control2.X + d*s.To.X,
		Y: a*s.From.Y + b*s.Control1.Y + c*s.Control2.Y + d*s.To.Y,
	}
}

// ChartDimensions is the pixel size of the plot and its uniform padding
type ChartDimensions struct {
	Width   float64
	Height  float64
	Padding float64
}

// ChartGeometry is the renderable output of BuildChart
type ChartGeometry struct {
	Points      []Point
	Segments    []Segment
	LinePath    string // SVG path data for the smooth curve
	AreaPath    string // LinePath closed along the baseline
	YAxisLabels []int  // top to bottom

	MinValue float64 // scaled min (min * 0.9)
	MaxValue float64 // scaled max (max * 1.1)
	Baseline float64 // y of the plot floor
}

// BuildChart maps data points to pixel coordinates and builds the curve and
// area paths. Each pair of neighbours is joined with a cubic Bézier whose
// control points sit at 1/3 and 2/3 of the horizontal gap, holding the start
// and end y respectively, so the curve passes through every point.
func BuildChart(data []DataPoint, dims ChartDimensions) ChartGeometry {
	values := make([]DataPoint, 0, len(data))
	for _, d := range data {
		if !isFinite(d.Value) {
			assertFinite(d.Value, "data point "+d.Label)
			continue
		}
		values = append(values, d)
	}

	geom := ChartGeometry{Baseline: dims.Height - dims.Padding}
	if len(values) == 0 {
		return geom
	}

	minV, maxV := values[0].Value, values[0].Value
	for _, d := range values[1:] {
		minV = math.Min(minV, d.Value)
		maxV = math.Max(maxV, d.Value)
	}
	geom.MaxValue = maxV * chartHeadroom
	geom.MinValue = minV * chartFootroom
	valueRange := geom.MaxValue - geom.MinValue

	plotWidth := dims.Width - 2*dims.Padding
	plotHeight := dims.Height - 2*dims.Padding
	n := len(values)

	geom.Points = make([]Point, n)
	for i, d := range values {
		x := dims.Padding
		if n > 1 {
			x = dims.Padding + float64(i)*plotWidth/float64(n-1)
		}

		y := dims.Height / 2
		if valueRange != 0 {
			y = dims.Height - dims.Padding - ((d.Value-geom.MinValue)/valueRange)*plotHeight
		}

		geom.Points[i] = Point{DataPoint: d, X: x, Y: y}
	}

	geom.Segments = smoothSegments(geom.Points)
	geom.LinePath = linePath(geom.Points[0], geom.Segments)
	geom.AreaPath = areaPath(geom.LinePath, geom.Points, geom.Baseline)
	geom.YAxisLabels = yAxisLabels(geom.MaxValue, valueRange)

	return geom
}

// PointAt returns the point at index i for tooltip placement
func (g ChartGeometry) PointAt(i int) (Point, bool) {
	if i < 0 || i >= len(g.Points) {
		return Point{}, false
	}
	return g.Points[i], true
}

// NearestIndex resolves a pointer x position to the closest point.
// Ties go to the lower index.
func (g ChartGeometry) NearestIndex(x float64) (int, bool) {
	if len(g.Points) == 0 {
		return 0, false
	}
	best := 0
	bestDist := math.Abs(g.Points[0].X - x)
	for i, p := range g.Points[1:] {
		if d := math.Abs(p.X - x); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best, true
}

func smoothSegments(points []Point) []Segment {
	if len(points) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		x1, y1 := points[i].X, points[i].Y
		x2, y2 := points[i+1].X, points[i+1].Y
		dx := x2 - x1
		segments = append(segments, Segment{
			From:     Vec{x1, y1},
			Control1: Vec{x1 + dx/3, y1},
			Control2: Vec{x1 + 2*dx/3, y2},
			To:       Vec{x2, y2},
		})
	}
	return segments
}

func linePath(first Point, segments []Segment) string {
	var b strings.Builder
	b.WriteString("M ")
	writeCoord(&b, first.X, first.Y)
	for _, s := range segments {
		b.WriteString(" C ")
		writeCoord(&b, s.Control1.X, s.Control1.Y)
		b.WriteString(", ")
		writeCoord(&b, s.Control2.X, s.Control2.Y)
		b.WriteString(", ")
		writeCoord(&b, s.To.X, s.To.Y)
	}
	return b.String()
}

func areaPath(line string, points []Point, baseline float64) string {
	first := points[0]
	last := points[len(points)-1]

	var b strings.Builder
	b.WriteString(line)
	b.WriteString(" L ")
	writeCoord(&b, last.X, baseline)
	b.WriteString(" L ")
	writeCoord(&b, first.X, baseline)
	b.WriteString(" Z")
	return b.String()
}

func yAxisLabels(maxValue, valueRange float64) []int {
	labels := make([]int, yAxisTicks)
	step := valueRange / float64(yAxisTicks-1)
	for i := range labels {
		labels[i] = int(math.Round(maxValue - float64(i)*step))
	}
	return labels
}

func writeCoord(b *strings.Builder, x, y float64) {
	b.WriteString(formatNum(x))
	b.WriteByte(' ')
	b.WriteString(formatNum(y))
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
