package model

import "sort"

// NameMap implements a bidirectional mapping between a name and an index
type NameMap struct {
	NameToIndex map[string]int
	IndexToName map[int]string
}

func (f NameMap) Set(name string, index int) {
	f.NameToIndex[name] = index
	f.IndexToName[index] = name
}

func (f NameMap) Size() int {
	return len(f.IndexToName)
}

func (f NameMap) ContainsName(name string) (int, bool) {
	index, ok := f.NameToIndex[name]
	return index, ok
}

func NewNameMap(names ...string) NameMap {
	m := NameMap{
		NameToIndex: map[string]int{},
		IndexToName: map[int]string{},
	}
	for i, name := range names {
		m.Set(name, i)
	}
	return m
}

// ColumnMap is a bidirectional mapping between a CSV column index and a
// feature index
type ColumnMap struct {
	ColumnToIndex map[int]int
	IndexToColumn map[int]int
}

func (f ColumnMap) Set(column int, index int) {
	f.ColumnToIndex[column] = index
	f.IndexToColumn[index] = column
}

func (f ColumnMap) Size() int {
	return len(f.ColumnToIndex)
}

func (f ColumnMap) GetColumn(index int) (int, bool) {
	column, ok := f.IndexToColumn[index]
	return column, ok
}

func NewColumnMap() ColumnMap {
	return ColumnMap{
		ColumnToIndex: map[int]int{},
		IndexToColumn: map[int]int{},
	}
}

// Metadata describes a loaded dataset directory.
type Metadata struct {
	Directory string

	// Features maps the selected feature column names to sample matrix columns
	Features NameMap

	// Files lists the CSV files read, in load order
	Files []string

	// ClassCounts holds the number of samples per label
	ClassCounts map[int]int

	// InvalidLabelFiles lists files whose name did not start with a numeric label
	InvalidLabelFiles []string
}

func NewMetadata(directory string, features []string) *Metadata {
	return &Metadata{
		Directory:   directory,
		Features:    NewNameMap(features...),
		ClassCounts: map[int]int{},
	}
}

func (d *Metadata) FeatureCount() int {
	return d.Features.Size()
}

// FeatureNames returns the feature names in sample matrix column order.
func (d *Metadata) FeatureNames() []string {
	out := make([]string, d.Features.Size())
	for i := range out {
		out[i] = d.Features.IndexToName[i]
	}
	return out
}

// Classes returns the labels present, sorted.
func (d *Metadata) Classes() []int {
	out := make([]int, 0, len(d.ClassCounts))
	for label := range d.ClassCounts {
		out = append(out, label)
	}
	sort.Ints(out)
	return out
}
