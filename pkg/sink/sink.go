// Package sink receives the rows a sweep produces: cluster and summary
// evaluation rows, labeled partitions, centrality scores and degree vectors.
package sink

import (
	"errors"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// EvaluationSink accepts evaluation rows as they are produced. Implementations
// must be safe for concurrent use.
type EvaluationSink interface {
	AppendCluster(models.ClusterRecord) error
	AppendSummary(models.SummaryRecord) error
}

// PartitionExporter stores the labeled partition of one clustering run.
type PartitionExporter interface {
	ExportPartition(run string, rows []models.LabeledRow) error
}

// ScoreExporter stores one centrality metric of one interaction.
type ScoreExporter interface {
	ExportScores(interaction models.Interaction, metric string, scores []models.Score) error
}

// DegreeExporter stores the category degree vectors of one interaction.
type DegreeExporter interface {
	ExportDegrees(interaction models.Interaction, vectors []labeling.DegreeVector) error
}

// Sink is everything the pipeline writes.
type Sink interface {
	EvaluationSink
	PartitionExporter
	ScoreExporter
	DegreeExporter
}

// Tee forwards every write to each sink in order and joins their errors.
type Tee []Sink

func (t Tee) AppendCluster(rec models.ClusterRecord) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.AppendCluster(rec))
	}
	return errors.Join(errs...)
}

func (t Tee) AppendSummary(rec models.SummaryRecord) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.AppendSummary(rec))
	}
	return errors.Join(errs...)
}

func (t Tee) ExportPartition(run string, rows []models.LabeledRow) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.ExportPartition(run, rows))
	}
	return errors.Join(errs...)
}

func (t Tee) ExportScores(interaction models.Interaction, metric string, scores []models.Score) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.ExportScores(interaction, metric, scores))
	}
	return errors.Join(errs...)
}

func (t Tee) ExportDegrees(interaction models.Interaction, vectors []labeling.DegreeVector) error {
	var errs []error
	for _, s := range t {
		errs = append(errs, s.ExportDegrees(interaction, vectors))
	}
	return errors.Join(errs...)
}
