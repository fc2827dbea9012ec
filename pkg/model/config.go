package model

import (
	"fmt"

	"pqkernel/pkg/kernel"
)

// KernelType selects which kernel a classifier is built on.
type KernelType int

const (
	ClassicalKernel KernelType = iota
	QuantumKernel
	DualKernel
)

func (k KernelType) String() string {
	switch k {
	case ClassicalKernel:
		return "classical"
	case QuantumKernel:
		return "quantum"
	case DualKernel:
		return "dual"
	default:
		return fmt.Sprintf("kernel-type(%d)", int(k))
	}
}

// Config is one hyperparameter configuration. Classical is used by classical
// and dual kernels, Quantum by quantum and dual kernels, Alpha only by dual.
type Config struct {
	Type      KernelType
	C         float64
	Classical kernel.ClassicalParams
	Quantum   kernel.QuantumParams
	Alpha     float64
}

func (c Config) String() string {
	switch c.Type {
	case ClassicalKernel:
		return fmt.Sprintf("C=%g %s", c.C, c.Classical)
	case QuantumKernel:
		return fmt.Sprintf("C=%g %s", c.C, c.Quantum)
	default:
		return fmt.Sprintf("C=%g alpha=%.2f %s %s", c.C, c.Alpha, c.Quantum, c.Classical)
	}
}

// KernelFactory builds the kernel for a Config. Quantum overrides the
// fidelity kernel, e.g. with a classical stand-in when no simulator should
// run.
type KernelFactory struct {
	Quantum func(p kernel.QuantumParams) (kernel.Kernel, error)
}

func (f KernelFactory) quantum(p kernel.QuantumParams) (kernel.Kernel, error) {
	if f.Quantum != nil {
		return f.Quantum(p)
	}
	if p.Reps < 1 {
		return nil, fmt.Errorf("quantum kernel needs at least one repetition, got %d", p.Reps)
	}
	return kernel.NewQuantum(p), nil
}

func (f KernelFactory) Build(c Config) (kernel.Kernel, error) {
	switch c.Type {
	case ClassicalKernel:
		return c.Classical.Build()
	case QuantumKernel:
		return f.quantum(c.Quantum)
	case DualKernel:
		q, err := f.quantum(c.Quantum)
		if err != nil {
			return nil, err
		}
		cl, err := c.Classical.Build()
		if err != nil {
			return nil, err
		}
		if c.Alpha < 0 || c.Alpha > 1 {
			return nil, fmt.Errorf("blend weight %g outside [0, 1]", c.Alpha)
		}
		return &kernel.Dual{Quantum: q, Classical: cl, Alpha: c.Alpha}, nil
	}
	return nil, fmt.Errorf("unknown kernel type %s", c.Type)
}
