package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gilchrisn/interaction-clustering/pkg/centrality"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

// CentralitySummary lists what RunCentrality exported and skipped.
type CentralitySummary struct {
	Exported map[models.Interaction][]centrality.Metric
	Failed   map[models.Interaction]error
}

// RunCentrality scores the category subgraph of every configured interaction
// with each metric and exports the scores unmodified. Like Run, a failing
// interaction is logged and skipped.
func (s *Sweep) RunCentrality(ctx context.Context, calc *centrality.Calculator) (*CentralitySummary, error) {
	if err := s.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep options: %w", err)
	}
	cats, err := s.Provider.Lists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category lists: %w", err)
	}

	summary := &CentralitySummary{
		Exported: make(map[models.Interaction][]centrality.Metric),
		Failed:   make(map[models.Interaction]error),
	}
	for _, interaction := range s.Options.Interactions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		logger := s.Logger.With().Str("interaction", string(interaction)).Logger()

		sub, err := s.Prepare(ctx, interaction, cats)
		if err != nil {
			logger.Error().Err(err).Msg("Interaction skipped")
			s.Metrics.InteractionFailed(string(interaction))
			summary.Failed[interaction] = err
			continue
		}

		for _, metric := range centrality.Metrics {
			scores, err := calc.Compute(sub.Graph, metric)
			if err == nil {
				err = s.Sink.ExportScores(interaction, string(metric), scores)
			}
			if err != nil {
				logger.Error().Err(err).Str("metric", string(metric)).Msg("Centrality failed")
				summary.Failed[interaction] = errors.Join(summary.Failed[interaction], fmt.Errorf("%s: %w", metric, err))
				continue
			}
			summary.Exported[interaction] = append(summary.Exported[interaction], metric)
		}
		logger.Info().Int("nodes", sub.Graph.NumNodes()).Msg("Centrality exported")
	}
	return summary, nil
}
