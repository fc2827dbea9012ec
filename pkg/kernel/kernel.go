// Package kernel implements the similarity functions fed to the
// precomputed-kernel SVM: classical kernels, the quantum fidelity kernel and
// the dual (blended) kernel.
package kernel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrEmpty             = errors.New("empty sample matrix")
)

// Kernel maps two sample matrices A (n x d) and B (m x d) to the n x m matrix
// of pairwise similarities.
type Kernel interface {
	Compute(a, b mat.Matrix) (*mat.Dense, error)
	String() string
}

// Family names a classical kernel.
type Family string

const (
	LinearFamily     Family = "linear"
	PolynomialFamily Family = "poly"
	RBFFamily        Family = "rbf"
)

func ParseFamily(name string) (Family, error) {
	switch f := Family(strings.ToLower(strings.TrimSpace(name))); f {
	case LinearFamily, PolynomialFamily, RBFFamily:
		return f, nil
	}
	return "", fmt.Errorf("unknown kernel family %q", name)
}

// UnmarshalText accepts the family names of ParseFamily in any case.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ClassicalParams describes a classical kernel. Unused fields are ignored by
// the family.
type ClassicalParams struct {
	Family Family  `yaml:"family"`
	Gamma  float64 `yaml:"gamma,omitempty"`
	Degree int     `yaml:"degree,omitempty"`
	Coef0  float64 `yaml:"coef0,omitempty"`
}

func (p ClassicalParams) Build() (Kernel, error) {
	switch p.Family {
	case LinearFamily:
		return Linear{}, nil
	case RBFFamily:
		if p.Gamma <= 0 {
			return nil, fmt.Errorf("rbf kernel needs a positive gamma, got %g", p.Gamma)
		}
		return RBF{Gamma: p.Gamma}, nil
	case PolynomialFamily:
		if p.Gamma <= 0 || p.Degree < 1 {
			return nil, fmt.Errorf("poly kernel needs gamma > 0 and degree >= 1, got %g/%d", p.Gamma, p.Degree)
		}
		return Polynomial{Gamma: p.Gamma, Degree: p.Degree, Coef0: p.Coef0}, nil
	}
	return nil, fmt.Errorf("unknown kernel family %q", p.Family)
}

func (p ClassicalParams) String() string {
	switch p.Family {
	case RBFFamily:
		return fmt.Sprintf("rbf(gamma=%g)", p.Gamma)
	case PolynomialFamily:
		return fmt.Sprintf("poly(gamma=%g,degree=%d,coef0=%g)", p.Gamma, p.Degree, p.Coef0)
	default:
		return string(p.Family)
	}
}

// Linear is k(x, y) = x.y
type Linear struct{}

func (Linear) Compute(a, b mat.Matrix) (*mat.Dense, error) {
	return pairwise(a, b, floats.Dot)
}

func (Linear) String() string { return "linear" }

// RBF is k(x, y) = exp(-gamma * |x - y|^2)
type RBF struct {
	Gamma float64
}

func (k RBF) Compute(a, b mat.Matrix) (*mat.Dense, error) {
	return pairwise(a, b, func(x, y []float64) float64 {
		d := floats.Distance(x, y, 2)
		return math.Exp(-k.Gamma * d * d)
	})
}

func (k RBF) String() string { return fmt.Sprintf("rbf(gamma=%g)", k.Gamma) }

// Polynomial is k(x, y) = (gamma * x.y + coef0)^degree
type Polynomial struct {
	Gamma  float64
	Degree int
	Coef0  float64
}

func (k Polynomial) Compute(a, b mat.Matrix) (*mat.Dense, error) {
	return pairwise(a, b, func(x, y []float64) float64 {
		return math.Pow(k.Gamma*floats.Dot(x, y)+k.Coef0, float64(k.Degree))
	})
}

func (k Polynomial) String() string {
	return fmt.Sprintf("poly(gamma=%g,degree=%d,coef0=%g)", k.Gamma, k.Degree, k.Coef0)
}

// Gram evaluates k against itself.
func Gram(k Kernel, x mat.Matrix) (*mat.Dense, error) {
	return k.Compute(x, x)
}

// Submatrix copies the rows x cols block of k.
func Submatrix(k mat.Matrix, rows, cols []int) *mat.Dense {
	out := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			out.Set(i, j, k.At(r, c))
		}
	}
	return out
}

func checkShapes(a, b mat.Matrix) (int, int, error) {
	n, da := a.Dims()
	m, db := b.Dims()
	if n == 0 || m == 0 {
		return 0, 0, ErrEmpty
	}
	if da != db {
		return 0, 0, fmt.Errorf("%w: %d vs %d columns", ErrDimensionMismatch, da, db)
	}
	return n, m, nil
}

func rowsOf(a mat.Matrix) [][]float64 {
	n, _ := a.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, a)
	}
	return out
}

// pairwise fills the n x m matrix f(a_i, b_j). When a and b are the same
// matrix only the upper triangle is evaluated and mirrored.
func pairwise(a, b mat.Matrix, f func(x, y []float64) float64) (*mat.Dense, error) {
	n, m, err := checkShapes(a, b)
	if err != nil {
		return nil, err
	}
	ra := rowsOf(a)
	out := mat.NewDense(n, m, nil)
	if same(a, b) {
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := f(ra[i], ra[j])
				out.Set(i, j, v)
				out.Set(j, i, v)
			}
		}
		return out, nil
	}
	rb := rowsOf(b)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			out.Set(i, j, f(ra[i], rb[j]))
		}
	}
	return out, nil
}

// same reports whether a and b are the identical matrix value.
func same(a, b mat.Matrix) bool {
	da, ok := a.(*mat.Dense)
	if !ok {
		return false
	}
	db, ok := b.(*mat.Dense)
	return ok && da == db
}
