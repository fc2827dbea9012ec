package svm

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const tau = 1e-12

// solver is the SMO solver of Fan, Chen and Lin (2005) for
//
//	min 0.5 a^T Q a - e^T a   s.t.  y^T a = 0,  0 <= a_i <= C
//
// with second order working set selection. Q is precomputed from the
// caller's kernel matrix; the problems handled here are small enough that no
// shrinking or caching is done.
type solver struct {
	l     int
	y     []float64
	q     [][]float64
	qd    []float64
	alpha []float64
	g     []float64
	c     float64
	eps   float64
}

// solveBinary trains one +1/-1 problem over the samples idx of gram. It
// returns the dual coefficients alpha_i*y_i and rho.
func solveBinary(gram mat.Matrix, idx []int, y []float64, p Parameters) ([]float64, float64) {
	l := len(idx)
	s := &solver{
		l:     l,
		y:     y,
		q:     make([][]float64, l),
		qd:    make([]float64, l),
		alpha: make([]float64, l),
		g:     make([]float64, l),
		c:     p.C,
		eps:   p.Eps,
	}
	for i := 0; i < l; i++ {
		s.q[i] = make([]float64, l)
		for j := 0; j < l; j++ {
			s.q[i][j] = y[i] * y[j] * gram.At(idx[i], idx[j])
		}
		s.qd[i] = s.q[i][i]
		s.g[i] = -1
	}

	maxIter := p.MaxIter
	if maxIter <= 0 {
		maxIter = 100 * l
		if maxIter < 10000000 {
			maxIter = 10000000
		}
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		i, j, ok := s.selectWorkingSet()
		if !ok {
			break
		}
		s.update(i, j)
	}
	if iter >= maxIter {
		log.Warn().Int("iterations", iter).Msg("svm solver reached max number of iterations")
	}

	coef := make([]float64, l)
	for i := range coef {
		coef[i] = s.alpha[i] * y[i]
	}
	return coef, s.rho()
}

func (s *solver) upper(i int) bool { return s.alpha[i] >= s.c }
func (s *solver) lower(i int) bool { return s.alpha[i] <= 0 }

// selectWorkingSet returns the maximal violating pair refined by the second
// order gain, or ok=false once the KKT gap is below eps.
func (s *solver) selectWorkingSet() (int, int, bool) {
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	gmaxIdx, gminIdx := -1, -1
	objDiffMin := math.Inf(1)

	for t := 0; t < s.l; t++ {
		if s.y[t] > 0 {
			if !s.upper(t) && -s.g[t] >= gmax {
				gmax = -s.g[t]
				gmaxIdx = t
			}
		} else {
			if !s.lower(t) && s.g[t] >= gmax {
				gmax = s.g[t]
				gmaxIdx = t
			}
		}
	}
	i := gmaxIdx
	if i == -1 {
		return 0, 0, false
	}
	qi := s.q[i]

	for j := 0; j < s.l; j++ {
		if s.y[j] > 0 {
			if s.lower(j) {
				continue
			}
			gradDiff := gmax + s.g[j]
			if s.g[j] >= gmax2 {
				gmax2 = s.g[j]
			}
			if gradDiff > 0 {
				quad := s.qd[i] + s.qd[j] - 2*s.y[i]*qi[j]
				objDiffMin, gminIdx = pick(gradDiff, quad, j, objDiffMin, gminIdx)
			}
		} else {
			if s.upper(j) {
				continue
			}
			gradDiff := gmax - s.g[j]
			if -s.g[j] >= gmax2 {
				gmax2 = -s.g[j]
			}
			if gradDiff > 0 {
				quad := s.qd[i] + s.qd[j] + 2*s.y[i]*qi[j]
				objDiffMin, gminIdx = pick(gradDiff, quad, j, objDiffMin, gminIdx)
			}
		}
	}

	if gmax+gmax2 < s.eps || gminIdx == -1 {
		return 0, 0, false
	}
	return i, gminIdx, true
}

func pick(gradDiff, quad float64, j int, objDiffMin float64, gminIdx int) (float64, int) {
	if quad <= 0 {
		quad = tau
	}
	objDiff := -(gradDiff * gradDiff) / quad
	if objDiff <= objDiffMin {
		return objDiff, j
	}
	return objDiffMin, gminIdx
}

// update solves the two-variable sub-problem and clips to the box.
func (s *solver) update(i, j int) {
	qi, qj := s.q[i], s.q[j]
	c := s.c
	oldI, oldJ := s.alpha[i], s.alpha[j]

	if s.y[i] != s.y[j] {
		quad := s.qd[i] + s.qd[j] + 2*qi[j]
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.g[i] - s.g[j]) / quad
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta
		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = diff
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = -diff
		}
		if diff > 0 {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = c - diff
			}
		} else if s.alpha[j] > c {
			s.alpha[j] = c
			s.alpha[i] = c + diff
		}
	} else {
		quad := s.qd[i] + s.qd[j] - 2*qi[j]
		if quad <= 0 {
			quad = tau
		}
		delta := (s.g[i] - s.g[j]) / quad
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta
		if sum > c {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = sum - c
			}
		} else if s.alpha[j] < 0 {
			s.alpha[j] = 0
			s.alpha[i] = sum
		}
		if sum > c {
			if s.alpha[j] > c {
				s.alpha[j] = c
				s.alpha[i] = sum - c
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = sum
		}
	}

	di, dj := s.alpha[i]-oldI, s.alpha[j]-oldJ
	for k := 0; k < s.l; k++ {
		s.g[k] += qi[k]*di + qj[k]*dj
	}
}

// rho averages y_i*G_i over free vectors, falling back to the midpoint of the
// feasible interval when every alpha is at a bound.
func (s *solver) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	nFree := 0
	sumFree := 0.0
	for i := 0; i < s.l; i++ {
		yG := s.y[i] * s.g[i]
		switch {
		case s.upper(i):
			if s.y[i] < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case s.lower(i):
			if s.y[i] > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
