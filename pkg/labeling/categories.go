// Package labeling attaches ground-truth categories and profile metadata to
// clustered nodes.
package labeling

import (
	"strings"

	"github.com/gilchrisn/interaction-clustering/pkg/graph"
)

// Type is the single-letter category of a node.
type Type string

const (
	Celebrity  Type = "c"
	Media      Type = "m"
	Politician Type = "p"
	// Unlabeled marks a node in no category list.
	Unlabeled Type = ""
)

// OtherClass is the ground-truth class used for unlabeled nodes in evaluation.
const OtherClass = "o"

// Precedence is the order category lists are consulted in when a node
// appears in more than one. The first match wins.
var Precedence = []Type{Celebrity, Politician, Media}

// Class returns the type as an evaluation class, OtherClass when unlabeled.
func (t Type) Class() string {
	if t == Unlabeled {
		return OtherClass
	}
	return string(t)
}

// Categories holds the tracked node sets, keyed by lowercase identifier.
type Categories struct {
	Celebrities graph.NodeSet
	Media       graph.NodeSet
	Politicians graph.NodeSet
}

// NewCategories lowercases and deduplicates the given lists.
func NewCategories(celebrities, media, politicians []string) Categories {
	return Categories{
		Celebrities: lowerSet(celebrities),
		Media:       lowerSet(media),
		Politicians: lowerSet(politicians),
	}
}

func lowerSet(ids []string) graph.NodeSet {
	s := make(graph.NodeSet, len(ids))
	for _, id := range ids {
		s[strings.ToLower(id)] = struct{}{}
	}
	return s
}

// Set returns the node set of category t.
func (c Categories) Set(t Type) graph.NodeSet {
	switch t {
	case Celebrity:
		return c.Celebrities
	case Media:
		return c.Media
	case Politician:
		return c.Politicians
	}
	return nil
}

// TypeOf returns the first category in Precedence containing id.
func (c Categories) TypeOf(id string) Type {
	id = strings.ToLower(id)
	for _, t := range Precedence {
		if c.Set(t).Has(id) {
			return t
		}
	}
	return Unlabeled
}

// Universe is the union of all categories.
func (c Categories) Universe() graph.NodeSet {
	return c.Celebrities.Union(c.Media, c.Politicians)
}
