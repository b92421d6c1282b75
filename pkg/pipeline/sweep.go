// Package pipeline runs the clustering sweep: for each interaction it builds
// the category subgraph, then clusters, labels and evaluates every
// (method, view, k) combination, streaming rows to a sink.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/interaction-clustering/pkg/clustering"
	"github.com/gilchrisn/interaction-clustering/pkg/evaluation"
	"github.com/gilchrisn/interaction-clustering/pkg/graph"
	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/metrics"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
	"github.com/gilchrisn/interaction-clustering/pkg/provider"
	"github.com/gilchrisn/interaction-clustering/pkg/sink"
	"github.com/gilchrisn/interaction-clustering/pkg/transform"
)

// Sweep runs every configured combination over the data of a provider.
type Sweep struct {
	Provider provider.Provider
	Sink     sink.Sink
	Methods  *clustering.Registry
	// Metrics may be nil.
	Metrics *metrics.Collector
	Logger  zerolog.Logger
	Options Options
	// Progress, when set, is called after every combination with the number
	// finished so far and the total. It may be called from several goroutines.
	Progress func(done, total int)

	done  atomic.Int64
	total int
}

// NewSweep creates a sweep. methods must hold every name in opts.Methods.
func NewSweep(p provider.Provider, s sink.Sink, methods *clustering.Registry, opts Options, logger zerolog.Logger) *Sweep {
	return &Sweep{
		Provider: p,
		Sink:     s,
		Methods:  methods,
		Logger:   logger,
		Options:  opts,
	}
}

// RunInfo describes one successful combination.
type RunInfo struct {
	Name        string             `yaml:"name" json:"name"`
	Combination models.Combination `yaml:"combination" json:"combination"`
	NumClusters int                `yaml:"num_clusters" json:"num_clusters"`
	Modularity  float64            `yaml:"modularity,omitempty" json:"modularity,omitempty"`
	Converged   bool               `yaml:"converged" json:"converged"`
	VMeasure    float64            `yaml:"v_measure" json:"v_measure"`
	DurationMS  int64              `yaml:"duration_ms" json:"duration_ms"`
}

// Failure describes one combination that was skipped.
type Failure struct {
	Name        string             `yaml:"name" json:"name"`
	Combination models.Combination `yaml:"combination" json:"combination"`
	Error       string             `yaml:"error" json:"error"`
	Err         error              `yaml:"-" json:"-"`
}

// InteractionInfo summarizes the category subgraph of one interaction.
type InteractionInfo struct {
	Interaction   models.Interaction            `yaml:"interaction" json:"interaction"`
	Nodes         int                           `yaml:"nodes" json:"nodes"`
	Edges         int                           `yaml:"edges" json:"edges"`
	Assortativity float64                       `yaml:"assortativity" json:"assortativity"`
	Mixing        map[string]map[string]float64 `yaml:"mixing,omitempty" json:"mixing,omitempty"`
	Error         string                        `yaml:"error,omitempty" json:"error,omitempty"`
}

// Report is the outcome of a sweep.
type Report struct {
	RunID        string            `yaml:"run_id" json:"run_id"`
	StartedAt    time.Time         `yaml:"started_at" json:"started_at"`
	FinishedAt   time.Time         `yaml:"finished_at" json:"finished_at"`
	Options      Options           `yaml:"options" json:"options"`
	Interactions []InteractionInfo `yaml:"interactions" json:"interactions"`
	Runs         []RunInfo         `yaml:"runs" json:"runs"`
	Failures     []Failure         `yaml:"failures" json:"failures"`
}

// Subgraph is the category subgraph of one interaction.
type Subgraph struct {
	Interaction models.Interaction
	// Full is the graph of every (sampled) edge.
	Full *graph.Graph
	// Graph holds the edges selected by the category universe.
	Graph *graph.Graph
}

// Prepare loads and builds the subgraph of interaction.
func (s *Sweep) Prepare(ctx context.Context, interaction models.Interaction, cats labeling.Categories) (*Subgraph, error) {
	edges, err := s.Provider.Edges(ctx, interaction)
	if err != nil {
		return nil, fmt.Errorf("load %s edges: %w", interaction, err)
	}
	edges = graph.Normalize(edges)
	if s.Options.SampleFraction > 0 && s.Options.SampleFraction < 1 {
		rng := rand.New(rand.NewSource(s.Options.Seed))
		edges = graph.SampleEdges(edges, s.Options.SampleFraction, rng)
	}
	full := graph.Build(edges)

	universe := cats.Universe()
	if s.Options.MinInDegree > 0 {
		keep := graph.FilterInDegree(full, s.Options.MinInDegree)
		for id := range universe {
			if !keep.Has(id) {
				delete(universe, id)
			}
		}
	}

	var selected *graph.Graph
	if s.Options.Selection == EdgesFrom {
		selected = graph.EdgesFrom(full, universe)
	} else {
		selected = graph.EdgesInto(full, universe)
	}
	if selected.NumNodes() == 0 {
		return nil, fmt.Errorf("%s has no edges in the category subgraph: %w", interaction, models.ErrInputData)
	}
	return &Subgraph{Interaction: interaction, Full: full, Graph: selected}, nil
}

// Run executes the sweep. Combination failures are recorded in the report and
// never stop the sweep; an interaction whose data cannot be loaded is skipped.
// The error is non-nil only for invalid options, unreadable category data, a
// cancelled context or a manifest that cannot be written.
func (s *Sweep) Run(ctx context.Context) (*Report, error) {
	if err := s.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep options: %w", err)
	}
	for _, name := range s.Options.Methods {
		if _, ok := s.Methods.Get(name); !ok {
			return nil, fmt.Errorf("unknown clustering method %q", name)
		}
	}
	defer s.Metrics.SweepStarted()()

	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Options:   s.Options,
	}
	logger := s.Logger.With().Str("run_id", report.RunID).Logger()

	cats, err := s.Provider.Lists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category lists: %w", err)
	}
	profiles, err := s.Provider.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category metadata: %w", err)
	}

	s.done.Store(0)
	s.total = len(s.Options.Interactions) * len(s.tasks(""))

	logger.Info().
		Int("interactions", len(s.Options.Interactions)).
		Int("combinations", s.total).
		Strs("methods", s.Options.Methods).
		Ints("cluster_counts", s.Options.ClusterCounts).
		Int("workers", s.Options.Workers).
		Msg("Sweep started")

	for _, interaction := range s.Options.Interactions {
		if ctx.Err() != nil {
			break
		}
		s.runInteraction(ctx, logger, interaction, cats, profiles, report)
	}

	report.FinishedAt = time.Now()
	logger.Info().
		Int("runs", len(report.Runs)).
		Int("failures", len(report.Failures)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Sweep finished")

	if s.Options.OutputDir != "" {
		if err := WriteManifest(s.Options.OutputDir, report); err != nil {
			return report, err
		}
	}
	return report, ctx.Err()
}

func (s *Sweep) runInteraction(ctx context.Context, logger zerolog.Logger, interaction models.Interaction, cats labeling.Categories, profiles labeling.Profiles, report *Report) {
	logger = logger.With().Str("interaction", string(interaction)).Logger()
	info := InteractionInfo{Interaction: interaction}

	sub, err := s.Prepare(ctx, interaction, cats)
	if err != nil {
		logger.Error().Err(err).Msg("Interaction skipped")
		s.Metrics.InteractionFailed(string(interaction))
		info.Error = err.Error()
		report.Interactions = append(report.Interactions, info)
		s.advance(len(s.tasks(interaction)))
		return
	}

	info.Nodes = sub.Graph.NumNodes()
	info.Edges = sub.Graph.NumEdges()
	mixing := evaluation.AttributeMixing(sub.Graph, cats)
	info.Assortativity = mixing.Assortativity()
	info.Mixing = mixing.Dict()
	report.Interactions = append(report.Interactions, info)

	if err := s.Sink.ExportDegrees(interaction, labeling.DegreeVectors(sub.Full, cats)); err != nil {
		logger.Error().Err(err).Msg("Degree vector export failed")
	}

	logger.Info().
		Int("nodes", info.Nodes).
		Int("edges", info.Edges).
		Float64("assortativity", info.Assortativity).
		Msg("Category subgraph built")

	w := &worker{
		sweep:     s,
		sub:       sub,
		nodes:     sub.Graph.Nodes(),
		labeler:   labeling.NewLabeler(cats, profiles),
		evaluator: evaluation.NewEvaluator(cats, s.Options.WeightedConductance, s.Sink),
		logger:    logger,
	}
	tasks := s.tasks(interaction)
	outcomes := make([]outcome, len(tasks))

	sem := make(chan struct{}, s.Options.Workers)
	var wg sync.WaitGroup
	for i := range tasks {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = w.run(ctx, tasks[i])
			s.advance(1)
		}(i)
	}
	wg.Wait()

	for _, o := range outcomes {
		switch {
		case o.failure != nil:
			report.Failures = append(report.Failures, *o.failure)
		case o.run != nil:
			report.Runs = append(report.Runs, *o.run)
		}
	}
}

func (s *Sweep) advance(n int) {
	done := s.done.Add(int64(n))
	if s.Progress != nil {
		s.Progress(int(done), s.total)
	}
}

// task is one combination with its resolved method and view.
type task struct {
	combo  models.Combination
	name   string
	method clustering.Method
	view   *viewMatrix
}

// tasks expands the options into the combinations of one interaction. Methods
// that choose k themselves run once on the graph; the others run for every k
// and view, k outermost.
func (s *Sweep) tasks(interaction models.Interaction) []task {
	views := make(map[string]*viewMatrix, len(s.Options.Views))
	for _, name := range s.Options.Views {
		v, _ := transform.Lookup(name)
		views[name] = &viewMatrix{view: v}
	}

	var out []task
	for _, name := range s.Options.Methods {
		method, _ := s.Methods.Get(name)
		if !method.UsesK() {
			c := models.Combination{Interaction: interaction, Method: name}
			out = append(out, task{combo: c, name: RunName(c), method: method})
			continue
		}
		for _, k := range s.Options.ClusterCounts {
			for _, view := range s.Options.Views {
				c := models.Combination{Interaction: interaction, Method: name, View: view, K: k}
				out = append(out, task{combo: c, name: RunName(c), method: method, view: views[view]})
			}
		}
	}
	return out
}

// viewMatrix builds a view at most once per interaction and shares it
// read-only between workers.
type viewMatrix struct {
	view transform.View
	once sync.Once
	m    *mat.Dense
	err  error
}

func (v *viewMatrix) get(g *graph.Graph, opts transform.Options) (*mat.Dense, error) {
	v.once.Do(func() {
		v.m, v.err = v.view.Build(g, opts)
	})
	return v.m, v.err
}

type outcome struct {
	run     *RunInfo
	failure *Failure
}

// worker holds what every combination of one interaction shares.
type worker struct {
	sweep     *Sweep
	sub       *Subgraph
	nodes     []string
	labeler   *labeling.Labeler
	evaluator *evaluation.Evaluator
	logger    zerolog.Logger
}

func (w *worker) run(ctx context.Context, t task) outcome {
	start := time.Now()
	info, err := w.cluster(ctx, t)
	elapsed := time.Since(start)
	w.sweep.Metrics.ObserveCombination(t.combo.Method, err == nil, elapsed)

	if err != nil {
		err = &models.CombinationError{Combination: t.combo, Err: err}
		w.logger.Error().
			Err(err).
			Str("method", t.combo.Method).
			Str("view", t.combo.View).
			Int("k", t.combo.K).
			Str("run", t.name).
			Msg("Combination failed")
		return outcome{failure: &Failure{Name: t.name, Combination: t.combo, Error: err.Error(), Err: err}}
	}

	info.DurationMS = elapsed.Milliseconds()
	w.logger.Debug().
		Str("run", t.name).
		Int("clusters", info.NumClusters).
		Float64("v_measure", info.VMeasure).
		Dur("duration", elapsed).
		Msg("Combination finished")
	return outcome{run: info}
}

// cluster runs one combination end to end. A panic inside it becomes an error.
func (w *worker) cluster(ctx context.Context, t task) (info *RunInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	in := clustering.Input{Nodes: w.nodes, Graph: w.sub.Graph, K: t.combo.K}
	if t.view != nil {
		m, err := t.view.get(w.sub.Graph, w.sweep.Options.Transform)
		if err != nil {
			return nil, err
		}
		in.Matrix = m
	}

	res, err := t.method.Cluster(ctx, in)
	if err != nil {
		return nil, err
	}
	if !res.Converged {
		w.logger.Warn().
			Str("method", t.combo.Method).
			Str("view", t.combo.View).
			Int("k", t.combo.K).
			Str("run", t.name).
			Int("iterations", res.Iterations).
			Msg("Clustering did not converge")
	}

	rows := w.labeler.Label(w.nodes, res.Assignment)
	if err := w.sweep.Sink.ExportPartition(t.name, rows); err != nil {
		return nil, fmt.Errorf("export partition: %w", err)
	}
	report, err := w.evaluator.Evaluate(t.name, w.sub.Graph, res.Assignment)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	return &RunInfo{
		Name:        t.name,
		Combination: t.combo,
		NumClusters: res.NumClusters,
		Modularity:  res.Modularity,
		Converged:   res.Converged,
		VMeasure:    report.Summary.VMeasure,
	}, nil
}
