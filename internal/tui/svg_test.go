package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals/internal/analysis"
)

func TestRenderSVG(t *testing.T) {
	geom := analysis.BuildChart([]analysis.DataPoint{
		{Value: 100, Label: "Mar 01"},
		{Value: 200, Label: "Mar 02", Color: "#EF4444"},
		{Value: 150, Label: "Mar 03"},
	}, chartDims)

	doc, err := RenderSVG("Blood <Sugar>", geom, chartDims)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, `<svg xmlns="http://www.w3.org/2000/svg" width="340" height="220"`))
	assert.Contains(t, doc, "<title>Blood &lt;Sugar&gt;</title>")
	assert.Contains(t, doc, `d="`+geom.LinePath+`"`)
	assert.Contains(t, doc, `d="`+geom.AreaPath+`"`)
	assert.Equal(t, 3, strings.Count(doc, "<circle"))
	assert.Contains(t, doc, `fill="#EF4444"`)
	assert.Contains(t, doc, `fill="`+defaultPointColor+`"`)
	assert.Contains(t, doc, `<title>Mar 02: 200</title>`)

	// Y labels run top to bottom from padding to baseline
	assert.Contains(t, doc, `y="20" font-family="sans-serif" font-size="10" fill="#6B7280">220</text>`)
	assert.Contains(t, doc, `y="200" font-family="sans-serif" font-size="10" fill="#6B7280">90</text>`)
}

func TestRenderSVGEmpty(t *testing.T) {
	geom := analysis.BuildChart(nil, chartDims)
	doc, err := RenderSVG("Steps", geom, chartDims)
	require.NoError(t, err)
	assert.NotContains(t, doc, "<circle")
	assert.NotContains(t, doc, "<text")
	assert.True(t, strings.HasSuffix(doc, "</svg>\n"))
}
