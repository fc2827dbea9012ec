package io

import (
	"fmt"
	"math"

	"github.com/nlpodyssey/spago/pkg/mat/rand"
	"gonum.org/v1/gonum/mat"
)

// DataSet is a sample matrix with one label per row.
type DataSet struct {
	X    *mat.Dense
	Y    []int
	Rand *rand.LockedRand
}

func NewDataSet(x *mat.Dense, y []int, seed uint64) (*DataSet, error) {
	r, _ := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("%d samples but %d labels", r, len(y))
	}
	return &DataSet{X: x, Y: y, Rand: rand.NewLockedRand(seed)}, nil
}

func (d *DataSet) Size() int {
	return len(d.Y)
}

// Subset copies the given rows into a new data set sharing the generator.
func (d *DataSet) Subset(indices []int) *DataSet {
	_, c := d.X.Dims()
	x := mat.NewDense(len(indices), c, nil)
	y := make([]int, len(indices))
	for i, j := range indices {
		x.SetRow(i, d.X.RawRowView(j))
		y[i] = d.Y[j]
	}
	return &DataSet{X: x, Y: y, Rand: d.Rand}
}

// RandomSplit shuffles the samples once and cuts the permutation into
// consecutive parts of the given sizes.
func (d *DataSet) RandomSplit(sizes ...int) ([]*DataSet, error) {
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total > d.Size() {
		return nil, fmt.Errorf("split sizes add up to %d, only %d samples", total, d.Size())
	}
	indices := d.Rand.Perm(d.Size())
	splits := make([]*DataSet, len(sizes))
	idx := 0
	for i, s := range sizes {
		splits[i] = d.Subset(indices[idx : idx+s])
		idx += s
	}
	return splits, nil
}

// TrainTestSplit holds out ceil(testFraction*n) samples for testing.
func (d *DataSet) TrainTestSplit(testFraction float64) (train, test *DataSet, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %g outside (0, 1)", testFraction)
	}
	n := d.Size()
	nTest := int(math.Ceil(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("cannot split %d samples with test fraction %g", n, testFraction)
	}
	splits, err := d.RandomSplit(nTest, nTrain)
	if err != nil {
		return nil, nil, err
	}
	return splits[1], splits[0], nil
}
