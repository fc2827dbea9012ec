package kernel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dual is the convex combination alpha*Quantum + (1-alpha)*Classical. The
// component kernels are not rescaled.
type Dual struct {
	Quantum   Kernel
	Classical Kernel
	Alpha     float64
}

func (k *Dual) String() string {
	return fmt.Sprintf("dual(alpha=%.2f,%s,%s)", k.Alpha, k.Quantum, k.Classical)
}

func (k *Dual) Compute(a, b mat.Matrix) (*mat.Dense, error) {
	if err := checkAlpha(k.Alpha); err != nil {
		return nil, err
	}
	sweep, err := NewSweep(k.Quantum, k.Classical, a, b)
	if err != nil {
		return nil, err
	}
	return sweep.At(k.Alpha)
}

// Blend returns alpha*kq + (1-alpha)*kc. Both matrices must be evaluated over
// the same row and column samples.
func Blend(alpha float64, kq, kc mat.Matrix) (*mat.Dense, error) {
	if err := checkAlpha(alpha); err != nil {
		return nil, err
	}
	rq, cq := kq.Dims()
	rc, cc := kc.Dims()
	if rq != rc || cq != cc {
		return nil, fmt.Errorf("%w: quantum %dx%d, classical %dx%d", ErrDimensionMismatch, rq, cq, rc, cc)
	}
	var scaledQ, scaledC mat.Dense
	scaledQ.Scale(alpha, kq)
	scaledC.Scale(1-alpha, kc)
	out := mat.NewDense(rq, cq, nil)
	out.Add(&scaledQ, &scaledC)
	return out, nil
}

// Sweep blends precomputed component matrices for every alpha without
// re-evaluating the kernels. Both matrices must cover the same samples.
type Sweep struct {
	Quantum   *mat.Dense
	Classical *mat.Dense
}

func NewSweep(kq, kc Kernel, a, b mat.Matrix) (*Sweep, error) {
	q, err := kq.Compute(a, b)
	if err != nil {
		return nil, fmt.Errorf("error computing quantum component: %w", err)
	}
	c, err := kc.Compute(a, b)
	if err != nil {
		return nil, fmt.Errorf("error computing classical component: %w", err)
	}
	return &Sweep{Quantum: q, Classical: c}, nil
}

func (s *Sweep) At(alpha float64) (*mat.Dense, error) {
	return Blend(alpha, s.Quantum, s.Classical)
}

// AlphaGrid returns steps+1 evenly spaced weights from 0 to 1 inclusive.
func AlphaGrid(steps int) []float64 {
	if steps < 1 {
		return []float64{0}
	}
	out := make([]float64, steps+1)
	for i := range out {
		out[i] = float64(i) / float64(steps)
	}
	return out
}

func checkAlpha(alpha float64) error {
	if alpha < 0 || alpha > 1 {
		return fmt.Errorf("blend weight %g outside [0, 1]", alpha)
	}
	return nil
}
