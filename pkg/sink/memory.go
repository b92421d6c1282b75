package sink

import (
	"sync"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// Memory keeps every row in memory. The zero value is ready to use.
type Memory struct {
	mu         sync.RWMutex
	clusters   []models.ClusterRecord
	summaries  []models.SummaryRecord
	partitions map[string][]models.LabeledRow
	scores     map[string][]models.Score
	degrees    map[models.Interaction][]labeling.DegreeVector
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AppendCluster(rec models.ClusterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = append(m.clusters, rec)
	return nil
}

func (m *Memory) AppendSummary(rec models.SummaryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, rec)
	return nil
}

func (m *Memory) ExportPartition(run string, rows []models.LabeledRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.partitions == nil {
		m.partitions = make(map[string][]models.LabeledRow)
	}
	m.partitions[run] = append([]models.LabeledRow(nil), rows...)
	return nil
}

func (m *Memory) ExportScores(interaction models.Interaction, metric string, scores []models.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scores == nil {
		m.scores = make(map[string][]models.Score)
	}
	m.scores[ScoreKey(interaction, metric)] = append([]models.Score(nil), scores...)
	return nil
}

func (m *Memory) ExportDegrees(interaction models.Interaction, vectors []labeling.DegreeVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.degrees == nil {
		m.degrees = make(map[models.Interaction][]labeling.DegreeVector)
	}
	m.degrees[interaction] = append([]labeling.DegreeVector(nil), vectors...)
	return nil
}

// Clusters returns a copy of the cluster rows in arrival order.
func (m *Memory) Clusters() []models.ClusterRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ClusterRecord(nil), m.clusters...)
}

// Summaries returns a copy of the summary rows in arrival order.
func (m *Memory) Summaries() []models.SummaryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.SummaryRecord(nil), m.summaries...)
}

// Partition returns the labeled rows exported under run.
func (m *Memory) Partition(run string) ([]models.LabeledRow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.partitions[run]
	return rows, ok
}

// Runs lists the exported partition names.
func (m *Memory) Runs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]string, 0, len(m.partitions))
	for run := range m.partitions {
		runs = append(runs, run)
	}
	return runs
}

// Scores returns the scores exported for interaction and metric.
func (m *Memory) Scores(interaction models.Interaction, metric string) ([]models.Score, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[ScoreKey(interaction, metric)]
	return s, ok
}

// Degrees returns the degree vectors exported for interaction.
func (m *Memory) Degrees(interaction models.Interaction) ([]labeling.DegreeVector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.degrees[interaction]
	return d, ok
}

// ScoreKey names the export of one metric of one interaction.
func ScoreKey(interaction models.Interaction, metric string) string {
	return string(interaction) + "_" + metric
}
