// Package quantum is a small statevector simulator for the ZZ feature map
// used by the fidelity kernel.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// MaxQubits bounds the statevector size (2^MaxQubits amplitudes per sample).
const MaxQubits = 16

var ErrTooManyQubits = errors.New("too many qubits")

// Entanglement selects which qubit pairs the feature map couples.
type Entanglement int

const (
	Linear Entanglement = iota
	Circular
	Full
)

// Entanglements lists the supported topologies in search order.
var Entanglements = []Entanglement{Linear, Circular, Full}

func (e Entanglement) String() string {
	switch e {
	case Linear:
		return "linear"
	case Circular:
		return "circular"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("entanglement(%d)", int(e))
	}
}

func ParseEntanglement(name string) (Entanglement, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear, nil
	case "circular":
		return Circular, nil
	case "full":
		return Full, nil
	}
	return 0, fmt.Errorf("unknown entanglement %q", name)
}

func (e Entanglement) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Entanglement) UnmarshalText(text []byte) error {
	parsed, err := ParseEntanglement(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Pairs returns the coupled qubit pairs for n qubits.
func (e Entanglement) Pairs(n int) [][2]int {
	var pairs [][2]int
	switch e {
	case Full:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	default:
		for i := 0; i+1 < n; i++ {
			pairs = append(pairs, [2]int{i, i + 1})
		}
		if e == Circular && n > 2 {
			pairs = append(pairs, [2]int{n - 1, 0})
		}
	}
	return pairs
}

// Encoder maps a classical sample to a normalised quantum state.
type Encoder interface {
	Encode(x []float64) ([]complex128, error)
	Qubits() int
}

// ZZFeatureMap is the second-order Pauli-Z evolution circuit: every repetition
// applies a Hadamard layer followed by single-qubit phases 2*x_i and pairwise
// ZZ phases 2*(pi-x_i)*(pi-x_j) on the entangled pairs.
type ZZFeatureMap struct {
	NumQubits    int
	Reps         int
	Entanglement Entanglement
	pairs        [][2]int
}

func NewZZFeatureMap(qubits, reps int, entanglement Entanglement) (*ZZFeatureMap, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("feature map needs at least one qubit, got %d", qubits)
	}
	if qubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, qubits, MaxQubits)
	}
	if reps < 1 {
		return nil, fmt.Errorf("feature map needs at least one repetition, got %d", reps)
	}
	return &ZZFeatureMap{
		NumQubits:    qubits,
		Reps:         reps,
		Entanglement: entanglement,
		pairs:        entanglement.Pairs(qubits),
	}, nil
}

func (f *ZZFeatureMap) Qubits() int {
	return f.NumQubits
}

func (f *ZZFeatureMap) Encode(x []float64) ([]complex128, error) {
	if len(x) != f.NumQubits {
		return nil, fmt.Errorf("sample has %d features, feature map expects %d", len(x), f.NumQubits)
	}
	dim := 1 << uint(f.NumQubits)
	phases := f.phases(x, dim)

	state := make([]complex128, dim)
	state[0] = 1
	for r := 0; r < f.Reps; r++ {
		hadamardAll(state, f.NumQubits)
		for b := range state {
			state[b] *= phases[b]
		}
	}
	return state, nil
}

// phases precomputes the diagonal of the data-dependent unitary.
func (f *ZZFeatureMap) phases(x []float64, dim int) []complex128 {
	coupling := make([]float64, len(f.pairs))
	for k, p := range f.pairs {
		coupling[k] = 2 * (math.Pi - x[p[0]]) * (math.Pi - x[p[1]])
	}
	out := make([]complex128, dim)
	for b := 0; b < dim; b++ {
		angle := 0.0
		for q := 0; q < f.NumQubits; q++ {
			if bit(b, q) == 1 {
				angle += 2 * x[q]
			}
		}
		for k, p := range f.pairs {
			if bit(b, p[0]) != bit(b, p[1]) {
				angle += coupling[k]
			}
		}
		out[b] = cmplx.Rect(1, angle)
	}
	return out
}

func bit(b, q int) int {
	return (b >> uint(q)) & 1
}

// hadamardAll applies H to every qubit in place.
func hadamardAll(state []complex128, qubits int) {
	norm := complex(1/math.Sqrt2, 0)
	for q := 0; q < qubits; q++ {
		step := 1 << uint(q)
		for base := 0; base < len(state); base += 2 * step {
			for i := base; i < base+step; i++ {
				a, b := state[i], state[i+step]
				state[i] = (a + b) * norm
				state[i+step] = (a - b) * norm
			}
		}
	}
}

// Fidelity returns |<a|b>|^2.
func Fidelity(a, b []complex128) float64 {
	var overlap complex128
	for i := range a {
		overlap += cmplx.Conj(a[i]) * b[i]
	}
	re, im := real(overlap), imag(overlap)
	return re*re + im*im
}
