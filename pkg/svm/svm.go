// Package svm is a C-support vector classifier over precomputed kernel
// matrices. Multiclass problems are decomposed one-vs-one and decided by
// voting, as libsvm does.
package svm

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrSingleClass = errors.New("training data needs at least two classes")
	ErrShape       = errors.New("kernel matrix shape mismatch")
)

type Parameters struct {
	C       float64
	Eps     float64
	MaxIter int
}

func DefaultParameters() Parameters {
	return Parameters{C: 1, Eps: 1e-3}
}

// BinaryModel separates Classes[Positive] (decision > 0) from
// Classes[Negative].
type BinaryModel struct {
	Positive int
	Negative int
	// Support holds training sample indices with non-zero coefficients.
	Support []int
	Coef    []float64
	Rho     float64
}

func (b *BinaryModel) decision(k mat.Matrix, row int) float64 {
	sum := 0.0
	for s, idx := range b.Support {
		sum += b.Coef[s] * k.At(row, idx)
	}
	return sum - b.Rho
}

type Model struct {
	Params Parameters
	// Classes is sorted ascending.
	Classes  []int
	Pairs    []BinaryModel
	NumTrain int
}

// Train fits a C-SVC on an n x n kernel matrix with one label per row.
func Train(gram mat.Matrix, y []int, p Parameters) (*Model, error) {
	r, c := gram.Dims()
	if r != c || r != len(y) {
		return nil, fmt.Errorf("%w: %dx%d kernel for %d labels", ErrShape, r, c, len(y))
	}
	if p.C <= 0 {
		return nil, fmt.Errorf("C must be positive, got %g", p.C)
	}
	if p.Eps <= 0 {
		p.Eps = DefaultParameters().Eps
	}

	groups := map[int][]int{}
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}
	classes := make([]int, 0, len(groups))
	for label := range groups {
		classes = append(classes, label)
	}
	sort.Ints(classes)
	if len(classes) < 2 {
		return nil, ErrSingleClass
	}

	m := &Model{Params: p, Classes: classes, NumTrain: len(y)}
	for i := 0; i < len(classes); i++ {
		for j := i + 1; j < len(classes); j++ {
			idx := append(append([]int{}, groups[classes[i]]...), groups[classes[j]]...)
			signs := make([]float64, len(idx))
			for k := range idx {
				if k < len(groups[classes[i]]) {
					signs[k] = 1
				} else {
					signs[k] = -1
				}
			}
			coef, rho := solveBinary(gram, idx, signs, p)
			bm := BinaryModel{Positive: i, Negative: j, Rho: rho}
			for k, a := range coef {
				if a != 0 {
					bm.Support = append(bm.Support, idx[k])
					bm.Coef = append(bm.Coef, a)
				}
			}
			m.Pairs = append(m.Pairs, bm)
		}
	}
	return m, nil
}

// Predict classifies the rows of k, a test x train kernel matrix whose
// columns follow the training order.
func (m *Model) Predict(k mat.Matrix) ([]int, error) {
	dec, err := m.Decision(k)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(dec))
	votes := make([]int, len(m.Classes))
	for r, values := range dec {
		for i := range votes {
			votes[i] = 0
		}
		for p, v := range values {
			if v > 0 {
				votes[m.Pairs[p].Positive]++
			} else {
				votes[m.Pairs[p].Negative]++
			}
		}
		best := 0
		for i := range votes {
			if votes[i] > votes[best] {
				best = i
			}
		}
		out[r] = m.Classes[best]
	}
	return out, nil
}

// Decision returns the pairwise decision values of every row of k, ordered
// like m.Pairs.
func (m *Model) Decision(k mat.Matrix) ([][]float64, error) {
	rows, cols := k.Dims()
	if cols != m.NumTrain {
		return nil, fmt.Errorf("%w: %d columns, model trained on %d samples", ErrShape, cols, m.NumTrain)
	}
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, len(m.Pairs))
		for p := range m.Pairs {
			out[r][p] = m.Pairs[p].decision(k, r)
		}
	}
	return out, nil
}

// NumSupport counts distinct support vectors across all pairs.
func (m *Model) NumSupport() int {
	seen := map[int]struct{}{}
	for _, p := range m.Pairs {
		for _, idx := range p.Support {
			seen[idx] = struct{}{}
		}
	}
	return len(seen)
}
