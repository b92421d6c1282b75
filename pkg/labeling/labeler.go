package labeling

import (
	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Profile is the descriptive metadata of a tracked account.
type Profile struct {
	Name        string `json:"name,omitempty"`
	Following   int64  `json:"following,omitempty"`
	Followers   int64  `json:"followers"`
	Description string `json:"description,omitempty"`
	// Affiliation is only recorded for politicians.
	Affiliation string `json:"affiliation,omitempty"`
}

// Profiles holds one metadata table per category, keyed by lowercase id.
type Profiles struct {
	Celebrities map[string]Profile
	Media       map[string]Profile
	Politicians map[string]Profile
}

// Table returns the metadata table of category t.
func (p Profiles) Table(t Type) map[string]Profile {
	switch t {
	case Celebrity:
		return p.Celebrities
	case Media:
		return p.Media
	case Politician:
		return p.Politicians
	}
	return nil
}

// Labeler enriches partition assignments.
type Labeler struct {
	Categories Categories
	Profiles   Profiles
}

// NewLabeler creates a labeler.
func NewLabeler(categories Categories, profiles Profiles) *Labeler {
	return &Labeler{Categories: categories, Profiles: profiles}
}

// Label returns one row per assigned node, following nodes order. Unlabeled
// nodes keep empty metadata; Affiliation is filled for politicians only.
func (l *Labeler) Label(nodes []string, assignment clustering.Assignment) []models.LabeledRow {
	rows := make([]models.LabeledRow, 0, len(assignment))
	for _, n := range nodes {
		partition, ok := assignment[n]
		if !ok {
			continue
		}
		t := l.Categories.TypeOf(n)
		row := models.LabeledRow{User: n, Partition: partition, Type: string(t)}
		if profile, ok := l.Profiles.Table(t)[n]; ok {
			row.Description = profile.Description
			row.Followers = profile.Followers
			if t == Politician {
				row.Affiliation = profile.Affiliation
			}
		}
		rows = append(rows, row)
	}
	return rows
}
