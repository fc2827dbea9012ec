package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"pqkernel/pkg/kernel"
	"pqkernel/pkg/svm"
)

var ErrNotFitted = errors.New("classifier is not fitted")

// KernelSVC is a support vector classifier over a precomputed kernel. Fit
// keeps the kernel instance and a copy of the training samples so that
// Predict evaluates new samples with exactly the training-time kernel.
type KernelSVC struct {
	Config  Config
	Factory KernelFactory
	// Solver carries the stopping tolerance; C always comes from Config.
	Solver svm.Parameters

	kernel kernel.Kernel
	train  *mat.Dense
	model  *svm.Model
}

func NewKernelSVC(c Config, factory KernelFactory) *KernelSVC {
	return &KernelSVC{Config: c, Factory: factory, Solver: svm.DefaultParameters()}
}

func (k *KernelSVC) params() svm.Parameters {
	p := k.Solver
	p.C = k.Config.C
	return p
}

func (k *KernelSVC) Fit(x *mat.Dense, y []int) error {
	kern, err := k.Factory.Build(k.Config)
	if err != nil {
		return fmt.Errorf("error building kernel: %w", err)
	}
	gram, err := kernel.Gram(kern, x)
	if err != nil {
		return fmt.Errorf("error computing training kernel: %w", err)
	}
	m, err := svm.Train(gram, y, k.params())
	if err != nil {
		return err
	}
	k.kernel = kern
	k.train = mat.DenseCopyOf(x)
	k.model = m
	return nil
}

func (k *KernelSVC) Predict(x *mat.Dense) ([]int, error) {
	if k.model == nil || k.train == nil {
		return nil, ErrNotFitted
	}
	km, err := k.kernel.Compute(x, k.train)
	if err != nil {
		return nil, fmt.Errorf("error computing prediction kernel: %w", err)
	}
	return k.model.Predict(km)
}

// FitGram trains directly on a precomputed train x train kernel matrix.
// Only PredictGram can be used afterwards.
func (k *KernelSVC) FitGram(gram mat.Matrix, y []int) error {
	m, err := svm.Train(gram, y, k.params())
	if err != nil {
		return err
	}
	k.kernel = nil
	k.train = nil
	k.model = m
	return nil
}

// PredictGram classifies from a precomputed test x train kernel matrix.
func (k *KernelSVC) PredictGram(km mat.Matrix) ([]int, error) {
	if k.model == nil {
		return nil, ErrNotFitted
	}
	return k.model.Predict(km)
}

func (k *KernelSVC) Kernel() kernel.Kernel { return k.kernel }

func (k *KernelSVC) Model() *svm.Model { return k.model }
