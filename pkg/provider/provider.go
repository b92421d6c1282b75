// Package provider supplies the edge lists, category lists and category
// metadata the pipeline consumes.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// EdgeListProvider returns the lowercase edge list of one interaction type.
type EdgeListProvider interface {
	Edges(ctx context.Context, interaction models.Interaction) ([]models.Edge, error)
}

// CategoryProvider returns the tracked category lists.
type CategoryProvider interface {
	Lists(ctx context.Context) (labeling.Categories, error)
}

// CategoryMetadataProvider returns one profile table per category.
type CategoryMetadataProvider interface {
	Tables(ctx context.Context) (labeling.Profiles, error)
}

// Provider bundles all three inputs.
type Provider interface {
	EdgeListProvider
	CategoryProvider
	CategoryMetadataProvider
}

// categoryFiles maps each category to the base name used by file and table
// backed providers.
var categoryFiles = []struct {
	Type labeling.Type
	Name string
}{
	{labeling.Celebrity, "celebrities"},
	{labeling.Media, "media"},
	{labeling.Politician, "politicians"},
}

// Memory is an in-memory provider.
type Memory struct {
	EdgeLists  map[models.Interaction][]models.Edge
	Categories labeling.Categories
	Profiles   labeling.Profiles
}

func (m *Memory) Edges(_ context.Context, interaction models.Interaction) ([]models.Edge, error) {
	edges, ok := m.EdgeLists[interaction]
	if !ok {
		return nil, fmt.Errorf("no edge list for %s: %w", interaction, models.ErrInputData)
	}
	return lowerEdges(edges), nil
}

func (m *Memory) Lists(context.Context) (labeling.Categories, error) {
	return m.Categories, nil
}

func (m *Memory) Tables(context.Context) (labeling.Profiles, error) {
	return m.Profiles, nil
}

func normalizeUser(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerEdges(edges []models.Edge) []models.Edge {
	out := make([]models.Edge, len(edges))
	for i, e := range edges {
		out[i] = models.Edge{
			StartNode: normalizeUser(e.StartNode),
			EndNode:   normalizeUser(e.EndNode),
		}
	}
	return out
}

func setProfiles(p *labeling.Profiles, t labeling.Type, table map[string]labeling.Profile) {
	switch t {
	case labeling.Celebrity:
		p.Celebrities = table
	case labeling.Media:
		p.Media = table
	case labeling.Politician:
		p.Politicians = table
	}
}
