package pkg

import (
	"fmt"

	"github.com/rs/zerolog"

	"pqkernel/pkg/model"
	"pqkernel/pkg/selection"
)

// SearchClassical grid-searches every classical kernel family and returns the
// overall winner along with the index of the grid it came from.
func SearchClassical(logger zerolog.Logger, grids []selection.ClassicalGrid, folds []selection.Fold, e selection.Evaluator) (*selection.Result, int, error) {
	results := make([]*selection.Result, len(grids))
	for i, grid := range grids {
		r, err := selection.GridSearch(grid.Candidates(), folds, e)
		if err != nil {
			return nil, -1, fmt.Errorf("error searching %s kernels: %w", grid.Family, err)
		}
		logger.Info().Str("family", string(grid.Family)).
			Str("best", r.Best.String()).
			Float64("score", r.BestScore).
			Msg("classical grid searched")
		results[i] = r
	}
	best, idx := selection.Best(results...)
	if best == nil {
		return nil, -1, selection.ErrNoCandidates
	}
	return best, idx, nil
}

func SearchQuantum(logger zerolog.Logger, grid selection.QuantumGrid, folds []selection.Fold, e selection.Evaluator) (*selection.Result, error) {
	r, err := selection.GridSearch(grid.Candidates(), folds, e)
	if err != nil {
		return nil, fmt.Errorf("error searching quantum kernels: %w", err)
	}
	for _, c := range r.Candidates {
		logger.Debug().Str("entanglement", c.Config.Quantum.Entanglement.String()).
			Float64("C", c.Config.C).
			Float64("score", c.Mean).
			Float64("std", c.Std).
			Msg("quantum candidate")
	}
	logger.Info().Str("best", r.Best.String()).Float64("score", r.BestScore).Msg("quantum grid searched")
	return r, nil
}

// SearchDual sweeps the blend weight between the classical and quantum
// winners. C is not searched again: every dual candidate reuses the C of the
// classical winner.
func SearchDual(logger zerolog.Logger, classical, quantum model.Config, alphas []float64, folds []selection.Fold, e selection.Evaluator) (*selection.Result, error) {
	r, err := selection.GridSearch(selection.DualCandidates(classical, quantum, alphas), folds, e)
	if err != nil {
		return nil, fmt.Errorf("error searching dual kernels: %w", err)
	}
	for _, c := range r.Candidates {
		logger.Debug().Float64("alpha", c.Config.Alpha).Float64("score", c.Mean).Msg("dual candidate")
	}
	logger.Info().Float64("alpha", r.Best.Alpha).
		Float64("C", r.Best.C).
		Str("C_from", "classical winner").
		Float64("score", r.BestScore).
		Msg("dual sweep done")
	return r, nil
}
