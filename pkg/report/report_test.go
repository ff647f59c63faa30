package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lioia/personalized-pagerank/pkg/graph"
)

func TestRankScoresOrdersByScoreThenId(t *testing.T) {
	ranking := RankScores([]float64{0.5, 0.25, 0.5, 0, 0.75})
	assert.Equal(t, Ranking{
		{Node: 4, Score: 0.75},
		{Node: 2, Score: 0.5},
		{Node: 0, Score: 0.5},
		{Node: 1, Score: 0.25},
		{Node: 3, Score: 0},
	}, ranking)
}

func TestTop(t *testing.T) {
	ranking := RankScores([]float64{1, 2, 3})
	assert.Len(t, ranking.Top(2), 2)
	assert.Len(t, ranking.Top(0), 3)
	assert.Len(t, ranking.Top(10), 3)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, RankScores([]float64{4.16666471920995, 3.6666644117167855, 3.6666644117167855})))
	assert.Equal(t, "4.16666 0\n3.66666 2\n3.66666 1\n", buf.String())
}

func TestEndToEndListing(t *testing.T) {
	g, err := graph.ParseEdges([]byte("0\t1\n1\t0\n2\t0\n"))
	require.NoError(t, err)
	res, err := graph.Solve(g, []int{0}, graph.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, RankScores(res.Scores)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], " 0"))
	assert.True(t, strings.HasSuffix(lines[1], " 2"))
	assert.True(t, strings.HasSuffix(lines[2], " 1"))
}

func TestDOT(t *testing.T) {
	g, err := graph.ParseAdjacency([]byte("0 [1]\n1 [0, 2]\n2 []\n"))
	require.NoError(t, err)
	ranking := RankScores([]float64{0.6, 0.3, 0.1})

	dot := DOT(g, ranking, []int{0}, 0)
	assert.True(t, strings.HasPrefix(dot, "digraph G {"))
	assert.Contains(t, dot, `0 [label="0\n0.60000", style=filled, fillcolor=gold];`)
	assert.Contains(t, dot, `2 [label="2\n0.10000", style=dashed];`)
	assert.Contains(t, dot, "1 -> 2;")

	top := DOT(g, ranking, []int{0}, 2)
	assert.NotContains(t, top, "1 -> 2;")
	assert.Contains(t, top, "0 -> 1;")
}

func TestRenderSVG(t *testing.T) {
	g, err := graph.ParseEdges([]byte("0\t1\n1\t0\n2\t0\n"))
	require.NoError(t, err)
	dot := DOT(g, RankScores([]float64{0.5, 0.3, 0.2}), []int{0}, 0)

	svg, err := RenderSVG(context.Background(), dot)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}
