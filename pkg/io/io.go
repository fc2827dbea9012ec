package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"pqkernel/pkg/model"
)

// InvalidLabel is assigned to samples from files whose name does not start
// with a numeric label.
const InvalidLabel = -1

// ErrNoData is returned when a dataset directory is missing or holds no
// samples.
var ErrNoData = errors.New("no data")

type DataParameters struct {
	Directory      string
	FeatureColumns []string
	// DropInvalidLabels skips files without a numeric label instead of
	// keeping their samples under InvalidLabel.
	DropInvalidLabels bool
}

type DataError struct {
	File  string
	Line  int
	Error string
}

// LabelFromFilename parses the numeric prefix of a `<label>_*.csv` file name.
func LabelFromFilename(name string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	prefix := strings.SplitN(base, "_", 2)[0]
	label, err := strconv.Atoi(prefix)
	if err != nil {
		return InvalidLabel, fmt.Errorf("file name %s has no numeric label prefix", filepath.Base(name))
	}
	return label, nil
}

// LoadDirectory reads every CSV file of the dataset directory, in name order,
// selecting the configured feature columns by header name.
func LoadDirectory(p DataParameters) (*model.Metadata, *mat.Dense, []int, []DataError, error) {
	info, err := os.Stat(p.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, nil, fmt.Errorf("directory %s: %w", p.Directory, ErrNoData)
		}
		return nil, nil, nil, nil, fmt.Errorf("error opening directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, nil, nil, fmt.Errorf("%s is not a directory", p.Directory)
	}
	if len(p.FeatureColumns) == 0 {
		return nil, nil, nil, nil, errors.New("no feature columns configured")
	}

	files, err := filepath.Glob(filepath.Join(p.Directory, "*.csv"))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("error listing directory: %w", err)
	}

	metaData := model.NewMetadata(p.Directory, p.FeatureColumns)
	var dataErrors []DataError
	var data []float64
	var labels []int

	for _, file := range files {
		label, err := LabelFromFilename(file)
		if err != nil {
			log.Warn().Str("file", file).Int("label", InvalidLabel).Msg("unparseable label")
			dataErrors = append(dataErrors, DataError{File: file, Error: err.Error()})
			metaData.InvalidLabelFiles = append(metaData.InvalidLabelFiles, file)
			if p.DropInvalidLabels {
				continue
			}
		}
		rows, err := readFile(file, metaData)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		for _, row := range rows {
			data = append(data, row...)
			labels = append(labels, label)
		}
		if len(rows) == 0 {
			log.Debug().Str("file", file).Msg("no samples")
			continue
		}
		metaData.ClassCounts[label] += len(rows)
		metaData.Files = append(metaData.Files, file)
	}

	if len(labels) == 0 {
		return nil, nil, nil, dataErrors, fmt.Errorf("directory %s: %w", p.Directory, ErrNoData)
	}
	return metaData, mat.NewDense(len(labels), metaData.FeatureCount(), data), labels, dataErrors, nil
}

func readFile(file string, metaData *model.Metadata) ([][]float64, error) {
	inputFile, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	reader := csv.NewReader(inputFile)
	reader.Comma = ','

	//First line is expected to be a header
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading header of %s: %w", file, err)
	}
	columns, err := buildFeatureIndex(header, metaData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	var rows [][]float64
	line := 1
	for record, err := reader.Read(); err != io.EOF; record, err = reader.Read() {
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", file, err)
		}
		row, err := parseFeatures(header, record, columns)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", file, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildFeatureIndex maps CSV columns to sample matrix columns.
func buildFeatureIndex(header []string, metaData *model.Metadata) (model.ColumnMap, error) {
	columns := model.NewColumnMap()
	for i, col := range header {
		if index, ok := metaData.Features.ContainsName(strings.TrimSpace(col)); ok {
			columns.Set(i, index)
		}
	}
	if columns.Size() != metaData.FeatureCount() {
		var missing []string
		for _, name := range metaData.FeatureNames() {
			found := false
			for _, col := range header {
				if strings.TrimSpace(col) == name {
					found = true
					break
				}
			}
			if !found {
				missing = append(missing, name)
			}
		}
		return columns, fmt.Errorf("feature columns %s not found in data header", strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseFeatures(header, record []string, columns model.ColumnMap) ([]float64, error) {
	features := make([]float64, columns.Size())
	for index := range features {
		column, _ := columns.GetColumn(index)
		value, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing feature %s: %w", header[column], err)
		}
		features[index] = value
	}
	return features, nil
}
