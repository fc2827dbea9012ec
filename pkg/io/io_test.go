package io

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixture(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "2_sag.csv", "id,b,a,extra\n1,0.5,1.5,x\n2,0.25,2.5,y\n")
	writeFile(t, dir, "1_normal.csv", "a,b\n1,2\n")
	writeFile(t, dir, "notes.txt", "ignored")
	return dir
}

func TestLoadDirectory(t *testing.T) {
	dir := fixture(t)
	metaData, x, y, dataErrors, err := LoadDirectory(DataParameters{Directory: dir, FeatureColumns: []string{"a", "b"}})
	require.NoError(t, err)
	require.Empty(t, dataErrors)
	require.Equal(t, []int{1, 2, 2}, y)
	require.True(t, mat.Equal(mat.NewDense(3, 2, []float64{1, 2, 1.5, 0.5, 2.5, 0.25}), x))
	require.Equal(t, []int{1, 2}, metaData.Classes())
	require.Equal(t, 2, metaData.ClassCounts[2])
	require.Len(t, metaData.Files, 2)
}

func TestLoadDirectoryInvalidLabel(t *testing.T) {
	dir := fixture(t)
	writeFile(t, dir, "swell_1.csv", "a,b\n3,4\n")

	params := DataParameters{Directory: dir, FeatureColumns: []string{"a", "b"}}
	metaData, _, y, dataErrors, err := LoadDirectory(params)
	require.NoError(t, err)
	require.Len(t, dataErrors, 1)
	require.Equal(t, []int{1, 2, 2, InvalidLabel}, y)
	require.Len(t, metaData.InvalidLabelFiles, 1)

	params.DropInvalidLabels = true
	_, _, y, dataErrors, err = LoadDirectory(params)
	require.NoError(t, err)
	require.Len(t, dataErrors, 1)
	require.Equal(t, []int{1, 2, 2}, y)
}

func TestLoadDirectoryHeaderOnlyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1_a.csv", "a,b\n1,2\n")
	writeFile(t, dir, "2_a.csv", "a,b\n3,4\n")
	writeFile(t, dir, "5_empty.csv", "a,b\n")

	metaData, _, y, _, err := LoadDirectory(DataParameters{Directory: dir, FeatureColumns: []string{"a", "b"}})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, y)
	require.Equal(t, []int{1, 2}, metaData.Classes())
	require.NotContains(t, metaData.ClassCounts, 5)
	require.Len(t, metaData.Files, 2)
}

func TestLoadDirectoryNoData(t *testing.T) {
	_, _, _, _, err := LoadDirectory(DataParameters{Directory: filepath.Join(t.TempDir(), "missing"), FeatureColumns: []string{"a"}})
	require.ErrorIs(t, err, ErrNoData)

	_, _, _, _, err = LoadDirectory(DataParameters{Directory: t.TempDir(), FeatureColumns: []string{"a"}})
	require.ErrorIs(t, err, ErrNoData)
}

func TestLoadDirectoryMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1_a.csv", "a,b\n1,oops\n")
	_, _, _, _, err := LoadDirectory(DataParameters{Directory: dir, FeatureColumns: []string{"a", "b"}})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)

	_, _, _, _, err = LoadDirectory(DataParameters{Directory: dir, FeatureColumns: []string{"a", "c"}})
	require.ErrorContains(t, err, "c not found")
}

func TestLabelFromFilename(t *testing.T) {
	for name, expected := range map[string]int{
		"3_harmonics.csv":  3,
		"/data/12_x_y.csv": 12,
		"7.csv":            7,
		"flicker_2.csv":    InvalidLabel,
		"_1.csv":           InvalidLabel,
	} {
		label, _ := LabelFromFilename(name)
		require.Equal(t, expected, label, name)
	}
}

func TestTrainTestSplit(t *testing.T) {
	n := 10
	x := mat.NewDense(n, 1, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i))
		y[i] = i
	}

	split := func() (*DataSet, *DataSet) {
		d, err := NewDataSet(x, y, 42)
		require.NoError(t, err)
		train, test, err := d.TrainTestSplit(0.25)
		require.NoError(t, err)
		return train, test
	}
	train, test := split()
	require.Equal(t, 7, train.Size())
	require.Equal(t, 3, test.Size())

	all := append(append([]int{}, train.Y...), test.Y...)
	sort.Ints(all)
	require.Equal(t, y, all)
	for i, label := range train.Y {
		require.Equal(t, float64(label), train.X.At(i, 0))
	}

	again, againTest := split()
	require.Equal(t, train.Y, again.Y)
	require.Equal(t, test.Y, againTest.Y)
}

func TestSplitErrors(t *testing.T) {
	d, err := NewDataSet(mat.NewDense(1, 1, nil), []int{0}, 1)
	require.NoError(t, err)
	_, _, err = d.TrainTestSplit(0.25)
	require.Error(t, err)

	_, err = NewDataSet(mat.NewDense(2, 1, nil), []int{0}, 1)
	require.Error(t, err)
}
