package kernel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"pqkernel/pkg/quantum"
)

// QuantumParams configures the fidelity kernel's feature map.
type QuantumParams struct {
	Entanglement quantum.Entanglement `yaml:"entanglement"`
	Reps         int                  `yaml:"reps"`
}

func (p QuantumParams) String() string {
	return fmt.Sprintf("zz(entanglement=%s,reps=%d)", p.Entanglement, p.Reps)
}

// EncoderFunc builds the state encoder for a feature dimension. It is the
// seam where a different simulation backend can be plugged in.
type EncoderFunc func(qubits int, p QuantumParams) (quantum.Encoder, error)

// ZZEncoder is the default EncoderFunc backed by the in-process statevector
// simulator.
func ZZEncoder(qubits int, p QuantumParams) (quantum.Encoder, error) {
	return quantum.NewZZFeatureMap(qubits, p.Reps, p.Entanglement)
}

// Quantum is the fidelity kernel k(x, y) = |<psi(x)|psi(y)>|^2.
type Quantum struct {
	Params  QuantumParams
	Encoder EncoderFunc
}

func NewQuantum(p QuantumParams) *Quantum {
	return &Quantum{Params: p, Encoder: ZZEncoder}
}

func (k *Quantum) String() string {
	return "quantum-" + k.Params.String()
}

func (k *Quantum) Compute(a, b mat.Matrix) (*mat.Dense, error) {
	n, m, err := checkShapes(a, b)
	if err != nil {
		return nil, err
	}
	_, d := a.Dims()
	encoderFunc := k.Encoder
	if encoderFunc == nil {
		encoderFunc = ZZEncoder
	}
	encoder, err := encoderFunc(d, k.Params)
	if err != nil {
		return nil, fmt.Errorf("error building feature map: %w", err)
	}
	if q := encoder.Qubits(); q != d {
		return nil, fmt.Errorf("%w: feature map has %d qubits for %d features", ErrDimensionMismatch, q, d)
	}

	sa, err := encodeRows(encoder, a)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, m, nil)
	if same(a, b) {
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := quantum.Fidelity(sa[i], sa[j])
				out.Set(i, j, v)
				out.Set(j, i, v)
			}
		}
		return out, nil
	}
	sb, err := encodeRows(encoder, b)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			out.Set(i, j, quantum.Fidelity(sa[i], sb[j]))
		}
	}
	return out, nil
}

func encodeRows(encoder quantum.Encoder, x mat.Matrix) ([][]complex128, error) {
	rows := rowsOf(x)
	states := make([][]complex128, len(rows))
	for i, row := range rows {
		state, err := encoder.Encode(row)
		if err != nil {
			return nil, fmt.Errorf("error encoding sample %d: %w", i, err)
		}
		states[i] = state
	}
	return states, nil
}
