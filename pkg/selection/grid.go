package selection

import (
	"pqkernel/pkg/kernel"
	"pqkernel/pkg/model"
	"pqkernel/pkg/quantum"
)

// ClassicalGrid spans one classical kernel family. Candidates are produced
// with C outermost, then coef0, degree and gamma.
type ClassicalGrid struct {
	Family kernel.Family `yaml:"family"`
	C      []float64     `yaml:"c"`
	Gamma  []float64     `yaml:"gamma,omitempty"`
	Degree []int         `yaml:"degree,omitempty"`
	Coef0  []float64     `yaml:"coef0,omitempty"`
}

func orDefault(values []float64, def float64) []float64 {
	if len(values) == 0 {
		return []float64{def}
	}
	return values
}

func (g ClassicalGrid) Candidates() []model.Config {
	coef0 := orDefault(g.Coef0, 0)
	gamma := orDefault(g.Gamma, 0)
	degree := g.Degree
	if len(degree) == 0 {
		degree = []int{0}
	}
	switch g.Family {
	case kernel.LinearFamily:
		coef0, gamma, degree = []float64{0}, []float64{0}, []int{0}
	case kernel.RBFFamily:
		coef0, degree = []float64{0}, []int{0}
	}

	var out []model.Config
	for _, c := range g.C {
		for _, c0 := range coef0 {
			for _, d := range degree {
				for _, gm := range gamma {
					out = append(out, model.Config{
						Type: model.ClassicalKernel,
						C:    c,
						Classical: kernel.ClassicalParams{
							Family: g.Family,
							Gamma:  gm,
							Degree: d,
							Coef0:  c0,
						},
					})
				}
			}
		}
	}
	return out
}

// QuantumGrid spans entanglement topologies (outer) and C (inner).
type QuantumGrid struct {
	Entanglement []quantum.Entanglement `yaml:"entanglement"`
	C            []float64              `yaml:"c"`
	Reps         int                    `yaml:"reps"`
}

func (g QuantumGrid) Candidates() []model.Config {
	var out []model.Config
	for _, e := range g.Entanglement {
		for _, c := range g.C {
			out = append(out, model.Config{
				Type:    model.QuantumKernel,
				C:       c,
				Quantum: kernel.QuantumParams{Entanglement: e, Reps: g.Reps},
			})
		}
	}
	return out
}

// DualCandidates fixes the classical and quantum winners and varies alpha.
// The dual classifier uses the classical winner's C.
func DualCandidates(classical, quantum model.Config, alphas []float64) []model.Config {
	out := make([]model.Config, len(alphas))
	for i, a := range alphas {
		out[i] = model.Config{
			Type:      model.DualKernel,
			C:         classical.C,
			Classical: classical.Classical,
			Quantum:   quantum.Quantum,
			Alpha:     a,
		}
	}
	return out
}
