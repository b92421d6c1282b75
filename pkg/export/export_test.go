package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/awalterschulze/gographviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

func scenario() (*graph.Graph, labeling.Categories) {
	g := graph.Build([]models.Edge{
		{StartNode: "a", EndNode: "b"},
		{StartNode: "a", EndNode: "b"},
		{StartNode: "b", EndNode: "c"},
		{StartNode: "c", EndNode: "d"},
	})
	return g, labeling.NewCategories([]string{"a"}, []string{"b"}, []string{"c"})
}

func TestBuild(t *testing.T) {
	g, cats := scenario()
	doc := Build(g, cats, clustering.Assignment{"a": "0"})

	assert.Equal(t, []Node{
		{Name: "a", Color: "red", Group: "0"},
		{Name: "b", Color: "blue"},
		{Name: "c", Color: "green"},
		{Name: "d", Color: "black"},
	}, doc.Nodes)
	assert.Equal(t, []Link{
		{Source: 0, Target: 1, Value: 2},
		{Source: 1, Target: 2, Value: 1},
		{Source: 2, Target: 3, Value: 1},
	}, doc.Links)
}

func TestWriteJSON(t *testing.T) {
	g, cats := scenario()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, g, cats, nil))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Nodes, 4)
	assert.Len(t, doc.Links, 3)
	assert.NotContains(t, buf.String(), "group")
}

func TestWriteHTMLScript(t *testing.T) {
	g, cats := scenario()
	var buf bytes.Buffer
	require.NoError(t, WriteHTMLScript(&buf, "men", g, cats))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<script type="application/json" id="men">`))
	assert.True(t, strings.HasSuffix(out, "</script>\n"))
}

func TestDOT(t *testing.T) {
	g, cats := scenario()
	dot, err := DOT("mentions", g, cats, clustering.Assignment{"a": "0", "b": "1"})
	require.NoError(t, err)

	ast, err := gographviz.Parse([]byte(dot))
	require.NoError(t, err)
	parsed := gographviz.NewGraph()
	require.NoError(t, gographviz.Analyse(ast, parsed))

	assert.True(t, parsed.Directed)
	assert.Len(t, parsed.Nodes.Nodes, 4)
	assert.Len(t, parsed.Edges.Edges, 3)
	assert.Equal(t, "red", parsed.Nodes.Lookup[`"a"`].Attrs["color"])
	assert.Equal(t, `"1"`, parsed.Nodes.Lookup[`"b"`].Attrs["group"])
}
