package provider

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// CSVDir reads edge lists from EdgesDir/<interaction>.csv with columns
// start_node,end_node and categories from CategoriesDir/<category>.csv, one
// account per row with a header naming at least the User column.
type CSVDir struct {
	EdgesDir      string
	CategoriesDir string
}

// NewCSVDir creates a CSV directory provider.
func NewCSVDir(edgesDir, categoriesDir string) *CSVDir {
	return &CSVDir{EdgesDir: edgesDir, CategoriesDir: categoriesDir}
}

func (p *CSVDir) Edges(_ context.Context, interaction models.Interaction) ([]models.Edge, error) {
	records, err := readCSV(filepath.Join(p.EdgesDir, string(interaction)+".csv"))
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "start_node") {
		records = records[1:]
	}

	edges := make([]models.Edge, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s line %d: expected 2 columns, got %d: %w", interaction, i+1, len(rec), models.ErrInputData)
		}
		edges = append(edges, models.Edge{StartNode: rec[0], EndNode: rec[1]})
	}
	return lowerEdges(edges), nil
}

func (p *CSVDir) Lists(ctx context.Context) (labeling.Categories, error) {
	profiles, err := p.Tables(ctx)
	if err != nil {
		return labeling.Categories{}, err
	}
	keys := func(m map[string]labeling.Profile) []string {
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}
	return labeling.NewCategories(keys(profiles.Celebrities), keys(profiles.Media), keys(profiles.Politicians)), nil
}

func (p *CSVDir) Tables(context.Context) (labeling.Profiles, error) {
	var profiles labeling.Profiles
	for _, cf := range categoryFiles {
		table, err := readProfiles(filepath.Join(p.CategoriesDir, cf.Name+".csv"))
		if err != nil {
			return labeling.Profiles{}, fmt.Errorf("%s: %w", cf.Name, err)
		}
		setProfiles(&profiles, cf.Type, table)
	}
	return profiles, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, models.ErrInputData)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, models.ErrInputData)
	}
	return records, nil
}

func readProfiles(path string) (map[string]labeling.Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, models.ErrInputData)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %v: %w", path, err, models.ErrInputData)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	userCol, ok := cols["user"]
	if !ok {
		return nil, fmt.Errorf("%s has no User column: %w", path, models.ErrInputData)
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	table := make(map[string]labeling.Profile)
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %v: %w", path, err, models.ErrInputData)
		}
		if userCol >= len(rec) {
			continue
		}
		user := normalizeUser(rec[userCol])
		if user == "" {
			continue
		}
		table[user] = labeling.Profile{
			Name:        field(rec, "name"),
			Following:   parseCount(field(rec, "following")),
			Followers:   parseCount(field(rec, "followers")),
			Description: field(rec, "description"),
			Affiliation: field(rec, "affiliation"),
		}
	}
	return table, nil
}

// parseCount accepts plain and comma-grouped integers; anything else is 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
