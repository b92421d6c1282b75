// Package export renders interaction graphs for visualization, coloring
// nodes by category.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
)

// Colors maps each category to its node color. Nodes outside every category
// are black.
var Colors = map[labeling.Type]string{
	labeling.Celebrity:  "red",
	labeling.Politician: "green",
	labeling.Media:      "blue",
	labeling.Unlabeled:  "black",
}

// Node is a JSON graph node.
type Node struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Group string `json:"group,omitempty"`
}

// Link is a JSON graph edge; Source and Target index into Nodes.
type Link struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// Document is the force-layout JSON shape.
type Document struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Build converts g to a Document. assignment is optional and fills each
// node's Group.
func Build(g *graph.Graph, cats labeling.Categories, assignment clustering.Assignment) Document {
	doc := Document{
		Nodes: make([]Node, 0, g.NumNodes()),
		Links: make([]Link, 0, g.NumEdges()),
	}
	for _, id := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, Node{
			Name:  id,
			Color: Colors[cats.TypeOf(id)],
			Group: assignment[id],
		})
	}
	for _, e := range g.Edges() {
		src, _ := g.Index(e.From)
		dst, _ := g.Index(e.To)
		doc.Links = append(doc.Links, Link{Source: src, Target: dst, Value: e.Weight})
	}
	return doc
}

// WriteJSON writes the Document of g as indented JSON.
func WriteJSON(w io.Writer, g *graph.Graph, cats labeling.Categories, assignment clustering.Assignment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(g, cats, assignment)); err != nil {
		return fmt.Errorf("encode graph json: %w", err)
	}
	return nil
}

// WriteHTMLScript wraps the JSON document in a <script type="application/json">
// element with the given id, for embedding in a visualization page.
func WriteHTMLScript(w io.Writer, id string, g *graph.Graph, cats labeling.Categories) error {
	if _, err := fmt.Fprintf(w, "<script type=\"application/json\" id=%q>\n", id); err != nil {
		return err
	}
	if err := WriteJSON(w, g, cats, nil); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</script>\n")
	return err
}

// DOT renders g as a Graphviz digraph named name. Edge weights become labels
// and penwidths; assignment, when given, becomes each node's group.
func DOT(name string, g *graph.Graph, cats labeling.Categories, assignment clustering.Assignment) (string, error) {
	out := gographviz.NewGraph()
	if err := out.SetName(strconv.Quote(name)); err != nil {
		return "", fmt.Errorf("set graph name: %w", err)
	}
	if err := out.SetDir(true); err != nil {
		return "", fmt.Errorf("set directed: %w", err)
	}
	graphName := strconv.Quote(name)

	for _, id := range g.Nodes() {
		attrs := map[string]string{
			"color": Colors[cats.TypeOf(id)],
		}
		if group, ok := assignment[id]; ok {
			attrs["group"] = strconv.Quote(group)
		}
		if err := out.AddNode(graphName, strconv.Quote(id), attrs); err != nil {
			return "", fmt.Errorf("add node %s: %w", id, err)
		}
	}
	for _, e := range g.Edges() {
		w := strconv.FormatFloat(e.Weight, 'g', -1, 64)
		attrs := map[string]string{
			"label":    strconv.Quote(w),
			"penwidth": w,
		}
		if err := out.AddEdge(strconv.Quote(e.From), strconv.Quote(e.To), true, attrs); err != nil {
			return "", fmt.Errorf("add edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return out.String(), nil
}
