package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"pqkernel/pkg/kernel"
	"pqkernel/pkg/model"
	"pqkernel/pkg/quantum"
)

type fakeEvaluator struct {
	scores map[float64][]float64
	calls  int
}

func (f *fakeEvaluator) Evaluate(c model.Config, folds []Fold) ([]float64, error) {
	f.calls++
	s, ok := f.scores[c.C]
	if !ok {
		return nil, errors.New("unknown config")
	}
	return s, nil
}

func linearConfigs(cs ...float64) []model.Config {
	return ClassicalGrid{Family: kernel.LinearFamily, C: cs}.Candidates()
}

func TestGridSearchSelectsSuperiorConfig(t *testing.T) {
	e := &fakeEvaluator{scores: map[float64][]float64{
		0.1: {0.5, 0.5},
		1:   {0.6, 0.7},
		10:  {0.9, 1.0},
		100: {0.6, 0.6},
	}}
	r, err := GridSearch(linearConfigs(0.1, 1, 10, 100), make([]Fold, 2), e)
	require.NoError(t, err)
	require.Equal(t, 2, r.BestIndex)
	require.Equal(t, 10.0, r.Best.C)
	require.InDelta(t, 0.95, r.BestScore, 1e-12)
	require.InDelta(t, 0.05, r.Candidates[2].Std, 1e-12)
	require.Equal(t, 4, e.calls)
}

func TestGridSearchTieGoesToLowestIndex(t *testing.T) {
	e := &fakeEvaluator{scores: map[float64][]float64{
		0.1: {0.5},
		1:   {0.8},
		10:  {0.8},
	}}
	r, err := GridSearch(linearConfigs(0.1, 1, 10), make([]Fold, 1), e)
	require.NoError(t, err)
	require.Equal(t, 1, r.BestIndex)
	require.Equal(t, 1.0, r.Best.C)
}

func TestGridSearchErrors(t *testing.T) {
	_, err := GridSearch(nil, nil, &fakeEvaluator{})
	require.ErrorIs(t, err, ErrNoCandidates)

	_, err = GridSearch(linearConfigs(3), nil, &fakeEvaluator{scores: map[float64][]float64{}})
	require.Error(t, err)
}

func TestBestResult(t *testing.T) {
	a := &Result{BestScore: 0.7}
	b := &Result{BestScore: 0.9}
	c := &Result{BestScore: 0.9}
	r, i := Best(a, b, c)
	require.Same(t, b, r)
	require.Equal(t, 1, i)

	r, i = Best(nil)
	require.Nil(t, r)
	require.Equal(t, -1, i)
}

func TestStratifiedKFold(t *testing.T) {
	y := []int{1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1}
	folds, err := StratifiedKFold(y, 3)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	seen := make([]int, len(y))
	for _, f := range folds {
		require.Len(t, f.Train, len(y)-len(f.Test))
		counts := map[int]int{}
		for _, i := range f.Test {
			seen[i]++
			counts[y[i]]++
		}
		for _, i := range f.Train {
			require.NotContains(t, f.Test, i)
		}
		// 4 zeros and 8 ones over 3 folds
		require.GreaterOrEqual(t, counts[0], 1)
		require.LessOrEqual(t, counts[0], 2)
		require.GreaterOrEqual(t, counts[1], 2)
		require.LessOrEqual(t, counts[1], 3)
	}
	for i, n := range seen {
		require.Equal(t, 1, n, "sample %d", i)
	}
}

func TestStratifiedKFoldIsContiguousPerClass(t *testing.T) {
	folds, err := StratifiedKFold([]int{0, 0, 0, 0, 1, 1, 1, 1}, 2)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 4, 5}, folds[0].Test)
	require.Equal(t, []int{2, 3, 6, 7}, folds[1].Test)
}

func TestStratifiedKFoldErrors(t *testing.T) {
	_, err := StratifiedKFold([]int{0, 1}, 1)
	require.Error(t, err)
	_, err = StratifiedKFold([]int{0, 1}, 3)
	require.Error(t, err)
}

func TestGridCandidates(t *testing.T) {
	poly := ClassicalGrid{
		Family: kernel.PolynomialFamily,
		C:      []float64{1, 10},
		Gamma:  []float64{0.1, 1},
		Degree: []int{2, 3},
		Coef0:  []float64{0, 1},
	}.Candidates()
	require.Len(t, poly, 16)
	require.Equal(t, 1.0, poly[0].C)
	require.Equal(t, 0.1, poly[0].Classical.Gamma)
	require.Equal(t, 1.0, poly[1].Classical.Gamma)
	require.Equal(t, 10.0, poly[8].C)

	rbf := ClassicalGrid{Family: kernel.RBFFamily, C: []float64{1}, Gamma: []float64{0.01, 0.1}, Degree: []int{2, 3}}.Candidates()
	require.Len(t, rbf, 2)

	q := QuantumGrid{Entanglement: quantum.Entanglements, C: []float64{1, 10}, Reps: 2}.Candidates()
	require.Len(t, q, 2*len(quantum.Entanglements))
	require.Equal(t, quantum.Entanglements[0], q[1].Quantum.Entanglement)
	require.Equal(t, 10.0, q[1].C)

	dual := DualCandidates(poly[9], q[3], kernel.AlphaGrid(4))
	require.Len(t, dual, 5)
	for _, d := range dual {
		require.Equal(t, model.DualKernel, d.Type)
		require.Equal(t, poly[9].C, d.C)
		require.Equal(t, poly[9].Classical, d.Classical)
		require.Equal(t, q[3].Quantum, d.Quantum)
	}
}

func clusters() (*mat.Dense, []int) {
	x := mat.NewDense(10, 2, []float64{
		-2, -1, -1, -2, -1.5, -0.5, -0.5, -1.5, -1, -1,
		2, 1, 1, 2, 1.5, 0.5, 0.5, 1.5, 1, 1,
	})
	return x, []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
}

func TestKernelEvaluatorReusesGram(t *testing.T) {
	x, y := clusters()
	calls := 0
	factory := model.KernelFactory{Quantum: func(p kernel.QuantumParams) (kernel.Kernel, error) {
		calls++
		return kernel.RBF{Gamma: 0.5}, nil
	}}
	e := NewKernelEvaluator(x, y, factory)
	folds, err := StratifiedKFold(y, 5)
	require.NoError(t, err)

	grid := QuantumGrid{Entanglement: []quantum.Entanglement{quantum.Linear}, C: []float64{0.1, 1, 10}, Reps: 2}
	r, err := GridSearch(grid.Candidates(), folds, e)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 1.0, r.BestScore)

	again, err := GridSearch(grid.Candidates(), folds, e)
	require.NoError(t, err)
	require.Equal(t, r.Candidates, again.Candidates)
}

func TestKernelEvaluatorDualBoundaries(t *testing.T) {
	x, y := clusters()
	factory := model.KernelFactory{Quantum: func(p kernel.QuantumParams) (kernel.Kernel, error) {
		return kernel.RBF{Gamma: 2}, nil
	}}
	e := NewKernelEvaluator(x, y, factory)
	folds, err := StratifiedKFold(y, 5)
	require.NoError(t, err)

	classical := model.Config{Type: model.ClassicalKernel, C: 1, Classical: kernel.ClassicalParams{Family: kernel.LinearFamily}}
	q := model.Config{Type: model.QuantumKernel, C: 1, Quantum: kernel.QuantumParams{Entanglement: quantum.Full, Reps: 2}}
	dual := DualCandidates(classical, q, []float64{0, 1})

	cs, err := e.Evaluate(classical, folds)
	require.NoError(t, err)
	qs, err := e.Evaluate(q, folds)
	require.NoError(t, err)
	d0, err := e.Evaluate(dual[0], folds)
	require.NoError(t, err)
	d1, err := e.Evaluate(dual[1], folds)
	require.NoError(t, err)
	require.Equal(t, cs, d0)
	require.Equal(t, qs, d1)
	// both weights blend the same two cached matrices
	require.Len(t, e.grams, 2)
	require.Len(t, e.sweeps, 1)
}
