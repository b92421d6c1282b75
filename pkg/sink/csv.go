package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

const (
	ClusterInfoFile  = "Cluster_Info.csv"
	ClusterStatsFile = "Cluster_Stats.csv"
	PartitionsDir    = "clusters"
	CentralityDir    = "centrality"
	DegreesDir       = "degrees"
)

var (
	clusterHeader = []string{
		"Cluster Method", "Cluster Num", "Conductance", "Clustering Coefficient",
		"Percent Celebrities", "Percent Media", "Percent Politicians",
		"Number Celebrities", "Number Media", "Number Politicians",
		"Percent Others", "Number Others",
	}
	summaryHeader = []string{
		"Cluster Method", "Num Clusters", "Avg Max Percent", "Avg Min Percent",
		"Avg Conductance", "Homogeneity Score", "Completeness Score", "V Score",
	}
	partitionHeader = []string{"User", "Partition", "Type"}
	labeledHeader   = []string{"User", "Partition", "Affiliation", "Description", "Followers"}
	scoreHeader     = []string{"Node", "Score"}
	degreeHeader    = []string{"node", "type", "c_indeg", "m_indeg", "p_indeg", "c_outdeg", "m_outdeg", "p_outdeg", "t_outdeg", "o_outdeg"}
)

// CSVDir writes every row as CSV under Dir. The two evaluation files are
// appended to across runs and get their header only when first created;
// per-run exports are rewritten.
type CSVDir struct {
	Dir string

	mu sync.Mutex
}

// NewCSVDir creates the output directory layout under dir.
func NewCSVDir(dir string) (*CSVDir, error) {
	for _, sub := range []string{"", PartitionsDir, CentralityDir, DegreesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return &CSVDir{Dir: dir}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (s *CSVDir) AppendCluster(rec models.ClusterRecord) error {
	return s.appendRow(ClusterInfoFile, clusterHeader, []string{
		rec.Method,
		strconv.Itoa(rec.Cluster),
		formatFloat(rec.Conductance),
		formatFloat(rec.ClusteringCoefficient),
		formatFloat(rec.PercentCelebrities),
		formatFloat(rec.PercentMedia),
		formatFloat(rec.PercentPoliticians),
		strconv.Itoa(rec.CountCelebrities),
		strconv.Itoa(rec.CountMedia),
		strconv.Itoa(rec.CountPoliticians),
		formatFloat(rec.PercentOthers),
		strconv.Itoa(rec.CountOthers),
	})
}

func (s *CSVDir) AppendSummary(rec models.SummaryRecord) error {
	return s.appendRow(ClusterStatsFile, summaryHeader, []string{
		rec.Method,
		strconv.Itoa(rec.NumClusters),
		formatFloat(rec.AvgMaxPercent),
		formatFloat(rec.AvgMinPercent),
		formatFloat(rec.AvgConductance),
		formatFloat(rec.Homogeneity),
		formatFloat(rec.Completeness),
		formatFloat(rec.VMeasure),
	})
}

// ExportPartition writes <run>.csv with User,Partition,Type and
// <run>_labeled.csv with the profile columns.
func (s *CSVDir) ExportPartition(run string, rows []models.LabeledRow) error {
	plain := make([][]string, 0, len(rows)+1)
	labeled := make([][]string, 0, len(rows)+1)
	plain = append(plain, partitionHeader)
	labeled = append(labeled, labeledHeader)
	for _, r := range rows {
		plain = append(plain, []string{r.User, r.Partition, r.Type})
		labeled = append(labeled, []string{
			r.User, r.Partition, r.Affiliation, r.Description, strconv.FormatInt(r.Followers, 10),
		})
	}
	if err := s.writeFile(filepath.Join(PartitionsDir, run+".csv"), plain); err != nil {
		return err
	}
	return s.writeFile(filepath.Join(PartitionsDir, run+"_labeled.csv"), labeled)
}

func (s *CSVDir) ExportScores(interaction models.Interaction, metric string, scores []models.Score) error {
	records := make([][]string, 0, len(scores)+1)
	records = append(records, scoreHeader)
	for _, sc := range scores {
		records = append(records, []string{sc.Node, formatFloat(sc.Value)})
	}
	return s.writeFile(filepath.Join(CentralityDir, ScoreKey(interaction, metric)+".csv"), records)
}

func (s *CSVDir) ExportDegrees(interaction models.Interaction, vectors []labeling.DegreeVector) error {
	records := make([][]string, 0, len(vectors)+1)
	records = append(records, degreeHeader)
	for _, v := range vectors {
		records = append(records, []string{
			v.Node, v.Type,
			formatFloat(v.CIn), formatFloat(v.MIn), formatFloat(v.PIn),
			formatFloat(v.COut), formatFloat(v.MOut), formatFloat(v.POut),
			formatFloat(v.TOut), formatFloat(v.OOut),
		})
	}
	return s.writeFile(filepath.Join(DegreesDir, string(interaction)+"_degrees.csv"), records)
}

func (s *CSVDir) appendRow(name string, header, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}
	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header to %s: %w", name, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", name, err)
	}
	w.Flush()
	return w.Error()
}

func (s *CSVDir) writeFile(name string, records [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
