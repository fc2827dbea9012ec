// Package preprocess holds the fit-on-train / apply-to-both feature
// transforms run before kernel evaluation.
package preprocess

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNotFitted = errors.New("transform used before fit")
	ErrEmpty     = errors.New("empty sample matrix")
)

// Transformer learns its parameters in Fit and applies them, unchanged, in
// Transform.
type Transformer interface {
	Fit(x mat.Matrix) error
	Transform(x mat.Matrix) (*mat.Dense, error)
}

func checkInput(x mat.Matrix, fitted bool, width int) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return ErrEmpty
	}
	if !fitted {
		return ErrNotFitted
	}
	if width >= 0 && c != width {
		return fmt.Errorf("expected %d features, got %d", width, c)
	}
	return nil
}

// StandardScaler centres every column and divides by its population standard
// deviation. Constant columns keep a unit scale.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) Fit(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return ErrEmpty
	}
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = math.Sqrt(variance)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if err := checkInput(x, s.Mean != nil, len(s.Mean)); err != nil {
		return nil, err
	}
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}

// PCA keeps the smallest number of principal components whose cumulative
// explained variance ratio exceeds VarianceRetained.
type PCA struct {
	VarianceRetained float64

	Mean []float64
	// Components is features x kept components, one unit vector per column.
	Components        *mat.Dense
	ExplainedVariance []float64
	ExplainedRatio    []float64
}

func (p *PCA) Fit(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return ErrEmpty
	}
	if p.VarianceRetained <= 0 || p.VarianceRetained > 1 {
		return fmt.Errorf("variance retained must be in (0, 1], got %g", p.VarianceRetained)
	}
	p.Mean = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		p.Mean[j] = stat.Mean(col, nil)
	}

	cov := mat.NewSymDense(c, nil)
	if r > 1 {
		stat.CovarianceMatrix(cov, x, nil)
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return errors.New("eigendecomposition of the covariance matrix failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	order := make([]int, c)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	keep := c
	if total > 0 {
		cumulative := 0.0
		below := 0
		for _, idx := range order {
			cumulative += math.Max(values[idx], 0) / total
			if cumulative <= p.VarianceRetained {
				below++
			}
		}
		keep = below + 1
		if keep > c {
			keep = c
		}
	} else {
		keep = 1
	}

	p.Components = mat.NewDense(c, keep, nil)
	p.ExplainedVariance = make([]float64, keep)
	p.ExplainedRatio = make([]float64, keep)
	vec := make([]float64, c)
	for k := 0; k < keep; k++ {
		idx := order[k]
		mat.Col(vec, idx, &vectors)
		// fix the sign so the largest loading is positive
		if vec[floats.MaxIdx(absAll(vec))] < 0 {
			floats.Scale(-1, vec)
		}
		p.Components.SetCol(k, vec)
		p.ExplainedVariance[k] = math.Max(values[idx], 0)
		if total > 0 {
			p.ExplainedRatio[k] = p.ExplainedVariance[k] / total
		}
	}
	return nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}

// NumComponents is the fitted output dimension.
func (p *PCA) NumComponents() int {
	if p.Components == nil {
		return 0
	}
	_, k := p.Components.Dims()
	return k
}

func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	if err := checkInput(x, p.Components != nil, len(p.Mean)); err != nil {
		return nil, err
	}
	r, c := x.Dims()
	centered := mat.NewDense(r, c, nil)
	centered.Apply(func(i, j int, v float64) float64 {
		return v - p.Mean[j]
	}, x)
	var out mat.Dense
	out.Mul(centered, p.Components)
	return &out, nil
}

// MinMaxScaler maps the training range of every column onto [Min, Max].
// Values outside the training range are not clipped.
type MinMaxScaler struct {
	Min float64
	Max float64

	DataMin []float64
	scale   []float64
}

func (s *MinMaxScaler) Fit(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return ErrEmpty
	}
	if s.Max <= s.Min {
		return fmt.Errorf("invalid feature range [%g, %g]", s.Min, s.Max)
	}
	s.DataMin = make([]float64, c)
	s.scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		lo, hi := floats.Min(col), floats.Max(col)
		span := hi - lo
		if span == 0 {
			span = 1
		}
		s.DataMin[j] = lo
		s.scale[j] = (s.Max - s.Min) / span
	}
	return nil
}

func (s *MinMaxScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if err := checkInput(x, s.DataMin != nil, len(s.DataMin)); err != nil {
		return nil, err
	}
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return s.Min + (v-s.DataMin[j])*s.scale[j]
	}, x)
	return out, nil
}

// Pipeline chains transformers; each step is fit on the output of the
// previous one.
type Pipeline struct {
	Steps []Transformer
}

func NewPipeline(steps ...Transformer) *Pipeline {
	return &Pipeline{Steps: steps}
}

// NewStandardPipeline is standardise -> PCA -> rescale to [min, max].
func NewStandardPipeline(varianceRetained, min, max float64) *Pipeline {
	return NewPipeline(
		&StandardScaler{},
		&PCA{VarianceRetained: varianceRetained},
		&MinMaxScaler{Min: min, Max: max},
	)
}

func (p *Pipeline) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	current := x
	var out *mat.Dense
	for i, step := range p.Steps {
		if err := step.Fit(current); err != nil {
			return nil, fmt.Errorf("error fitting step %d: %w", i, err)
		}
		var err error
		out, err = step.Transform(current)
		if err != nil {
			return nil, fmt.Errorf("error applying step %d: %w", i, err)
		}
		current = out
	}
	if out == nil {
		return mat.DenseCopyOf(x), nil
	}
	return out, nil
}

func (p *Pipeline) Transform(x mat.Matrix) (*mat.Dense, error) {
	current := x
	out := mat.DenseCopyOf(x)
	for i, step := range p.Steps {
		var err error
		out, err = step.Transform(current)
		if err != nil {
			return nil, fmt.Errorf("error applying step %d: %w", i, err)
		}
		current = out
	}
	return out, nil
}
