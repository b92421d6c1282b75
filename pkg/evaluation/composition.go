package evaluation

import (
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
)

// Composition counts the categories of a cluster's members.
type Composition struct {
	Size        int
	Celebrities int
	Media       int
	Politicians int
	Others      int
}

// Compose classifies each member with the category precedence.
func Compose(members []string, cats labeling.Categories) Composition {
	c := Composition{Size: len(members)}
	for _, m := range members {
		switch cats.TypeOf(m) {
		case labeling.Celebrity:
			c.Celebrities++
		case labeling.Media:
			c.Media++
		case labeling.Politician:
			c.Politicians++
		default:
			c.Others++
		}
	}
	return c
}

func (c Composition) percent(n int) float64 {
	if c.Size == 0 {
		return 0
	}
	return float64(n) / float64(c.Size)
}

func (c Composition) PercentCelebrities() float64 { return c.percent(c.Celebrities) }
func (c Composition) PercentMedia() float64       { return c.percent(c.Media) }
func (c Composition) PercentPoliticians() float64 { return c.percent(c.Politicians) }
func (c Composition) PercentOthers() float64      { return c.percent(c.Others) }

// MaxPercent is the largest category share, others included.
func (c Composition) MaxPercent() float64 {
	m := c.PercentCelebrities()
	for _, p := range []float64{c.PercentMedia(), c.PercentPoliticians(), c.PercentOthers()} {
		if p > m {
			m = p
		}
	}
	return m
}

// MinPercent is the smallest share among the tracked categories.
func (c Composition) MinPercent() float64 {
	m := c.PercentCelebrities()
	for _, p := range []float64{c.PercentMedia(), c.PercentPoliticians()} {
		if p < m {
			m = p
		}
	}
	return m
}
