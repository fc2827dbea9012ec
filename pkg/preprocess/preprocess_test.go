package preprocess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func trainMatrix() *mat.Dense {
	return mat.NewDense(6, 3, []float64{
		1.0, 10, 0.5,
		2.0, 20, 0.4,
		3.0, 31, 0.6,
		4.0, 39, 0.5,
		5.0, 52, 0.3,
		6.0, 60, 0.7,
	})
}

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{}
	x := mat.NewDense(4, 2, []float64{1, 5, 2, 5, 3, 5, 4, 5})
	require.NoError(t, s.Fit(x))
	require.Equal(t, []float64{2.5, 5}, s.Mean)
	require.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	require.Equal(t, 1.0, s.Scale[1])

	out, err := s.Transform(x)
	require.NoError(t, err)
	require.InDelta(t, -1.5/math.Sqrt(1.25), out.At(0, 0), 1e-12)
	require.Equal(t, 0.0, out.At(2, 1))
}

func TestTransformBeforeFit(t *testing.T) {
	x := trainMatrix()
	for _, tr := range []Transformer{&StandardScaler{}, &PCA{VarianceRetained: 0.95}, &MinMaxScaler{Max: 1}} {
		_, err := tr.Transform(x)
		require.ErrorIs(t, err, ErrNotFitted)
	}
}

func TestPCAKeepsDominantComponent(t *testing.T) {
	// points lie almost on the line y = 2x
	x := mat.NewDense(5, 2, []float64{
		1, 2.01,
		2, 3.99,
		3, 6.02,
		4, 7.98,
		5, 10.0,
	})
	p := &PCA{VarianceRetained: 0.95}
	require.NoError(t, p.Fit(x))
	require.Equal(t, 1, p.NumComponents())
	require.True(t, p.ExplainedRatio[0] > 0.99)

	out, err := p.Transform(x)
	require.NoError(t, err)
	r, c := out.Dims()
	require.Equal(t, 5, r)
	require.Equal(t, 1, c)
	// projections are centred and increase along the line
	require.InDelta(t, 0.0, out.At(2, 0), 0.05)
	require.True(t, out.At(4, 0) > out.At(0, 0))
}

func TestPCAKeepsAllWhenVarianceIsSpread(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 0, -1, 0, 0, 1, 0, -1})
	p := &PCA{VarianceRetained: 0.95}
	require.NoError(t, p.Fit(x))
	require.Equal(t, 2, p.NumComponents())
}

func TestMinMaxScaler(t *testing.T) {
	s := &MinMaxScaler{Min: -1, Max: 1}
	x := mat.NewDense(3, 2, []float64{0, 7, 5, 7, 10, 7})
	require.NoError(t, s.Fit(x))
	out, err := s.Transform(x)
	require.NoError(t, err)
	require.Equal(t, []float64{-1, -1, 0, -1, 1, -1}, out.RawMatrix().Data)

	// out-of-range values are not clipped
	out, err = s.Transform(mat.NewDense(1, 2, []float64{20, 7}))
	require.NoError(t, err)
	require.Equal(t, 3.0, out.At(0, 0))

	require.Error(t, (&MinMaxScaler{Min: 1, Max: 1}).Fit(x))
}

func TestPipelineDoesNotLeakTestStatistics(t *testing.T) {
	train := trainMatrix()
	test := mat.NewDense(2, 3, []float64{100, -5, 9, -50, 1000, -3})

	p := NewStandardPipeline(0.95, 0, 1)
	trainOut, err := p.FitTransform(train)
	require.NoError(t, err)

	scaler := p.Steps[0].(*StandardScaler)
	pca := p.Steps[1].(*PCA)
	minmax := p.Steps[2].(*MinMaxScaler)
	mean := append([]float64{}, scaler.Mean...)
	components := mat.DenseCopyOf(pca.Components)
	dataMin := append([]float64{}, minmax.DataMin...)

	testOut, err := p.Transform(test)
	require.NoError(t, err)

	require.Equal(t, mean, scaler.Mean)
	require.True(t, mat.Equal(components, pca.Components))
	require.Equal(t, dataMin, minmax.DataMin)

	// transforming the training data again gives the same result
	again, err := p.Transform(train)
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(trainOut, again, 1e-12))

	// the training output spans exactly [0, 1]; the extreme test rows do not
	_, c := trainOut.Dims()
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, trainOut)
		lo, hi := col[0], col[0]
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		require.InDelta(t, 0.0, lo, 1e-12)
		require.InDelta(t, 1.0, hi, 1e-12)
	}
	outside := false
	r, _ := testOut.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if testOut.At(i, j) < 0 || testOut.At(i, j) > 1 {
				outside = true
			}
		}
	}
	require.True(t, outside)
}

func TestPipelineDimensionMismatch(t *testing.T) {
	p := NewStandardPipeline(0.95, 0, 1)
	_, err := p.FitTransform(trainMatrix())
	require.NoError(t, err)
	_, err = p.Transform(mat.NewDense(1, 2, []float64{1, 2}))
	require.Error(t, err)
}
