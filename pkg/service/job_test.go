package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/config"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/pipeline"
	"github.com/gilchrisn/interaction-clustering/pkg/provider"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
)

func testProvider() *provider.Memory {
	edges := []models.Edge{
		{StartNode: "a", EndNode: "b"}, {StartNode: "b", EndNode: "a"},
		{StartNode: "b", EndNode: "c"}, {StartNode: "c", EndNode: "a"},
		{StartNode: "x", EndNode: "y"}, {StartNode: "y", EndNode: "x"},
		{StartNode: "y", EndNode: "z"}, {StartNode: "z", EndNode: "x"},
		{StartNode: "c", EndNode: "x"},
	}
	return &provider.Memory{
		EdgeLists:  map[models.Interaction][]models.Edge{models.Mentions: edges},
		Categories: labeling.NewCategories([]string{"a", "b", "c"}, []string{"x", "y"}, []string{"z"}),
	}
}

// blocking waits for its context and signals when it starts.
type blocking struct {
	once    sync.Once
	started chan struct{}
}

func (b *blocking) Name() string { return "blocking" }
func (b *blocking) UsesK() bool  { return false }
func (b *blocking) Cluster(ctx context.Context, _ clustering.Input) (*clustering.Result, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func newService(t *testing.T, base pipeline.Options, extra ...clustering.Method) *JobService {
	t.Helper()
	factory := func(opts pipeline.Options, out sink.Sink) *pipeline.Sweep {
		reg := clustering.NewRegistry(
			clustering.NewLouvain(nil),
			clustering.NewSpectral(opts.Seed),
			clustering.NewFuzzyCMeans(opts.Seed, zerolog.Nop()),
		)
		for _, m := range extra {
			reg.Register(m)
		}
		return pipeline.NewSweep(testProvider(), out, reg, opts, zerolog.Nop())
	}
	s := NewJobService(config.JobConfig{MaxWorkers: 2, ResultTTL: time.Hour}, base, factory, zerolog.Nop())
	t.Cleanup(s.Close)
	return s
}

func baseOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Interactions = []models.Interaction{models.Mentions}
	opts.Methods = []string{clustering.MethodLouvain, clustering.MethodSpectral}
	opts.Views = []string{"undirected_weighted"}
	opts.ClusterCounts = []int{2}
	return opts
}

func waitFor(t *testing.T, s *JobService, id string, status models.JobStatus) *models.Job {
	t.Helper()
	var job *models.Job
	require.Eventually(t, func() bool {
		j, err := s.Get(id)
		if err != nil {
			return false
		}
		job = j
		return j.Status == status
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestSubmitAndComplete(t *testing.T) {
	s := newService(t, baseOptions())

	job, err := s.Submit(models.JobParameters{})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, job.Status)

	done := waitFor(t, s, job.ID, models.JobStatusCompleted)
	require.NotNil(t, done.Result)
	assert.Equal(t, 2, done.Result.Runs)
	assert.Equal(t, 0, done.Result.Failures)
	assert.Equal(t, 100, done.Progress.Percentage)
	assert.NotNil(t, done.StartedAt)

	result, err := s.GetResult(job.ID)
	require.NoError(t, err)
	assert.Len(t, result.Rows.Summaries(), 2)
	assert.Equal(t, done.Result.RunID, result.Report.RunID)
}

func TestSubmitOverrides(t *testing.T) {
	s := newService(t, baseOptions())

	k := []int{3}
	selection := "edges_from"
	opts, err := s.Options(models.JobParameters{ClusterCounts: k, Selection: &selection, Interactions: []string{"REPLIES"}})
	require.NoError(t, err)
	assert.Equal(t, k, opts.ClusterCounts)
	assert.Equal(t, pipeline.EdgesFrom, opts.Selection)
	assert.Equal(t, []models.Interaction{models.Replies}, opts.Interactions)

	bad := "sideways"
	_, err = s.Submit(models.JobParameters{Selection: &bad})
	var verrs models.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Empty(t, s.List())
}

func TestCancelRunningJob(t *testing.T) {
	b := &blocking{started: make(chan struct{})}
	opts := baseOptions()
	opts.Methods = []string{"blocking"}
	s := newService(t, opts, b)

	job, err := s.Submit(models.JobParameters{})
	require.NoError(t, err)
	select {
	case <-b.started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	require.NoError(t, s.Cancel(job.ID))
	cancelled := waitFor(t, s, job.ID, models.JobStatusCancelled)
	assert.NotNil(t, cancelled.CompletedAt)

	_, err = s.GetResult(job.ID)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestJobOutputDir(t *testing.T) {
	opts := baseOptions()
	opts.OutputDir = t.TempDir()
	s := newService(t, opts)

	job, err := s.Submit(models.JobParameters{})
	require.NoError(t, err)
	waitFor(t, s, job.ID, models.JobStatusCompleted)

	dir := filepath.Join(opts.OutputDir, "jobs", job.ID)
	for _, name := range []string{pipeline.ManifestFile, sink.ClusterStatsFile, sink.ClusterInfoFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestNotFoundAndCleanup(t *testing.T) {
	s := newService(t, baseOptions())

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, s.Cancel("missing"), ErrJobNotFound)
	_, err = s.GetResult("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	job, err := s.Submit(models.JobParameters{})
	require.NoError(t, err)
	waitFor(t, s, job.ID, models.JobStatusCompleted)

	assert.Equal(t, 0, s.cleanup(time.Now()))
	assert.Equal(t, 1, s.cleanup(time.Now().Add(2*time.Hour)))
	_, err = s.Get(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
