package selection

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"pqkernel/pkg/kernel"
	"pqkernel/pkg/model"
	"pqkernel/pkg/svm"
)

var ErrNoCandidates = errors.New("empty parameter grid")

// Evaluator scores a configuration on every fold, returning one accuracy per
// fold.
type Evaluator interface {
	Evaluate(c model.Config, folds []Fold) ([]float64, error)
}

// KernelEvaluator scores kernel SVCs on a fixed training set. The kernel
// matrix of the whole training set is computed once per distinct kernel and
// sliced per fold; dual kernels are blended from a kernel.Sweep over the
// cached component matrices.
type KernelEvaluator struct {
	X       *mat.Dense
	Y       []int
	Factory model.KernelFactory
	Solver  svm.Parameters

	grams  map[string]*mat.Dense
	sweeps map[string]*kernel.Sweep
}

func NewKernelEvaluator(x *mat.Dense, y []int, factory model.KernelFactory) *KernelEvaluator {
	return &KernelEvaluator{X: x, Y: y, Factory: factory, Solver: svm.DefaultParameters(), grams: map[string]*mat.Dense{}, sweeps: map[string]*kernel.Sweep{}}
}

func gramKey(c model.Config) string {
	switch c.Type {
	case model.ClassicalKernel:
		return fmt.Sprintf("%s|%+v", c.Type, c.Classical)
	case model.QuantumKernel:
		return fmt.Sprintf("%s|%+v", c.Type, c.Quantum)
	}
	return fmt.Sprintf("%s|%+v|%+v|%v", c.Type, c.Classical, c.Quantum, c.Alpha)
}

// Gram returns the training kernel matrix for c, computing it at most once.
func (e *KernelEvaluator) Gram(c model.Config) (*mat.Dense, error) {
	if c.Type == model.DualKernel {
		sweep, err := e.sweep(c)
		if err != nil {
			return nil, err
		}
		return sweep.At(c.Alpha)
	}
	if e.grams == nil {
		e.grams = map[string]*mat.Dense{}
	}
	key := gramKey(c)
	if g, ok := e.grams[key]; ok {
		return g, nil
	}
	k, err := e.Factory.Build(c)
	if err != nil {
		return nil, fmt.Errorf("error building kernel: %w", err)
	}
	g, err := kernel.Gram(k, e.X)
	if err != nil {
		return nil, fmt.Errorf("error computing kernel %s: %w", k, err)
	}
	e.grams[key] = g
	return g, nil
}

// sweep pairs the cached component matrices of a dual configuration. Every
// alpha of the same quantum/classical pair shares one sweep.
func (e *KernelEvaluator) sweep(c model.Config) (*kernel.Sweep, error) {
	if e.sweeps == nil {
		e.sweeps = map[string]*kernel.Sweep{}
	}
	key := gramKey(model.Config{Type: model.DualKernel, Classical: c.Classical, Quantum: c.Quantum})
	if s, ok := e.sweeps[key]; ok {
		return s, nil
	}
	kq, err := e.Gram(model.Config{Type: model.QuantumKernel, Quantum: c.Quantum})
	if err != nil {
		return nil, err
	}
	kc, err := e.Gram(model.Config{Type: model.ClassicalKernel, Classical: c.Classical})
	if err != nil {
		return nil, err
	}
	s := &kernel.Sweep{Quantum: kq, Classical: kc}
	e.sweeps[key] = s
	return s, nil
}

func (e *KernelEvaluator) Evaluate(c model.Config, folds []Fold) ([]float64, error) {
	gram, err := e.Gram(c)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(folds))
	for i, fold := range folds {
		clf := model.NewKernelSVC(c, e.Factory)
		clf.Solver = e.Solver
		if err := clf.FitGram(kernel.Submatrix(gram, fold.Train, fold.Train), labelsAt(e.Y, fold.Train)); err != nil {
			return nil, fmt.Errorf("error fitting fold %d: %w", i, err)
		}
		pred, err := clf.PredictGram(kernel.Submatrix(gram, fold.Test, fold.Train))
		if err != nil {
			return nil, fmt.Errorf("error predicting fold %d: %w", i, err)
		}
		scores[i] = model.Accuracy(labelsAt(e.Y, fold.Test), pred)
	}
	return scores, nil
}

type CandidateScore struct {
	Config model.Config
	Scores []float64
	Mean   float64
	Std    float64
}

type Result struct {
	Best       model.Config
	BestIndex  int
	BestScore  float64
	Candidates []CandidateScore
}

// GridSearch evaluates every candidate and returns the one with the highest
// mean fold accuracy. Ties go to the lowest candidate index.
func GridSearch(candidates []model.Config, folds []Fold, e Evaluator) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	result := &Result{BestIndex: -1, Candidates: make([]CandidateScore, len(candidates))}
	for i, c := range candidates {
		scores, err := e.Evaluate(c, folds)
		if err != nil {
			return nil, fmt.Errorf("error evaluating %s: %w", c, err)
		}
		mean, variance := stat.PopMeanVariance(scores, nil)
		result.Candidates[i] = CandidateScore{Config: c, Scores: scores, Mean: mean, Std: math.Sqrt(variance)}
		log.Debug().Str("config", c.String()).Float64("score", mean).Msg("candidate scored")

		if math.IsNaN(mean) {
			continue
		}
		if result.BestIndex == -1 || mean > result.BestScore {
			result.BestIndex = i
			result.BestScore = mean
		}
	}
	if result.BestIndex == -1 {
		return nil, errors.New("no candidate produced a valid score")
	}
	result.Best = candidates[result.BestIndex]
	return result, nil
}

// Best picks the highest scoring result, ties going to the earliest.
func Best(results ...*Result) (*Result, int) {
	bestIdx := -1
	for i, r := range results {
		if r == nil {
			continue
		}
		if bestIdx == -1 || r.BestScore > results[bestIdx].BestScore {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return nil, -1
	}
	return results[bestIdx], bestIdx
}
