package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"pqkernel/pkg/preprocess"
)

// Model is a classifier together with the preprocessing fitted on its
// training partition, so raw feature rows can be classified directly.
type Model struct {
	MetaData      *Metadata
	Preprocessing *preprocess.Pipeline
	Classifier    *KernelSVC
}

func (m *Model) Predict(raw *mat.Dense) ([]int, error) {
	x := raw
	if m.Preprocessing != nil {
		var err error
		x, err = m.Preprocessing.Transform(raw)
		if err != nil {
			return nil, fmt.Errorf("error preprocessing samples: %w", err)
		}
	}
	return m.Classifier.Predict(x)
}
