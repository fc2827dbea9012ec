package pkg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pqkernel/pkg/kernel"
	"pqkernel/pkg/quantum"
	"pqkernel/pkg/selection"
)

type ExperimentParameters struct {
	DataDirs          []string `yaml:"data_dirs"`
	FeatureColumns    []string `yaml:"feature_columns"`
	DropInvalidLabels bool     `yaml:"drop_invalid_labels"`

	TestFraction float64 `yaml:"test_fraction"`
	RndSeed      uint64  `yaml:"seed"`
	Folds        int     `yaml:"folds"`

	VarianceRetained float64 `yaml:"variance_retained"`
	RangeMin         float64 `yaml:"range_min"`
	RangeMax         float64 `yaml:"range_max"`

	// ClassicalGrids are searched in order; ties between grids go to the
	// earlier one.
	ClassicalGrids []selection.ClassicalGrid `yaml:"classical_grids"`
	QuantumGrid    selection.QuantumGrid     `yaml:"quantum_grid"`
	AlphaSteps     int                       `yaml:"alpha_steps"`

	ChartFile string `yaml:"chart_file"`
}

func DefaultParameters() ExperimentParameters {
	c := []float64{0.1, 1, 10, 100}
	return ExperimentParameters{
		DataDirs: []string{
			"datasets/pqd/noise_0db",
			"datasets/pqd/noise_20db",
			"datasets/pqd/noise_30db",
			"datasets/pqd/noise_40db",
			"datasets/pqd/noise_50db",
		},
		FeatureColumns: []string{
			"mean", "std", "rms", "skewness", "kurtosis", "thd", "crest_factor", "energy",
		},
		TestFraction:     0.25,
		RndSeed:          42,
		Folds:            5,
		VarianceRetained: 0.95,
		RangeMin:         0,
		RangeMax:         1,
		ClassicalGrids: []selection.ClassicalGrid{
			{
				Family: kernel.PolynomialFamily,
				C:      c,
				Gamma:  []float64{0.01, 0.1, 1},
				Degree: []int{2, 3, 4},
				Coef0:  []float64{0, 1},
			},
			{
				Family: kernel.RBFFamily,
				C:      c,
				Gamma:  []float64{0.001, 0.01, 0.1, 1},
			},
			{
				Family: kernel.LinearFamily,
				C:      c,
			},
		},
		QuantumGrid: selection.QuantumGrid{
			Entanglement: quantum.Entanglements,
			C:            c,
			Reps:         2,
		},
		AlphaSteps: 20,
		ChartFile:  "accuracy.png",
	}
}

// LoadParameters overlays a YAML file on the defaults. Keys missing from the
// file keep their default value.
func LoadParameters(fileName string) (ExperimentParameters, error) {
	params := DefaultParameters()
	if fileName == "" {
		return params, nil
	}
	content, err := os.ReadFile(fileName)
	if err != nil {
		return params, fmt.Errorf("error reading config file %s: %w", fileName, err)
	}
	if err := yaml.Unmarshal(content, &params); err != nil {
		return params, fmt.Errorf("error parsing config file %s: %w", fileName, err)
	}
	return params, nil
}

// ApplyEnv loads .env files, if present, and applies PQK_* overrides.
func (p *ExperimentParameters) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return fmt.Errorf("error loading %s: %w", f, err)
			}
		}
	}
	if v := os.Getenv("PQK_DATA_DIRS"); v != "" {
		p.DataDirs = strings.Split(v, ",")
	}
	if v := os.Getenv("PQK_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PQK_SEED %q: %w", v, err)
		}
		p.RndSeed = seed
	}
	if v := os.Getenv("PQK_FOLDS"); v != "" {
		folds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PQK_FOLDS %q: %w", v, err)
		}
		p.Folds = folds
	}
	if v := os.Getenv("PQK_CHART"); v != "" {
		p.ChartFile = v
	}
	return nil
}

func (p ExperimentParameters) Validate() error {
	if len(p.FeatureColumns) == 0 {
		return fmt.Errorf("no feature columns configured")
	}
	if p.Folds < 2 {
		return fmt.Errorf("need at least 2 folds, got %d", p.Folds)
	}
	if p.AlphaSteps < 1 {
		return fmt.Errorf("need at least 1 alpha step, got %d", p.AlphaSteps)
	}
	if p.RangeMin >= p.RangeMax {
		return fmt.Errorf("invalid feature range [%g, %g]", p.RangeMin, p.RangeMax)
	}
	if len(p.ClassicalGrids) == 0 {
		return fmt.Errorf("no classical grids configured")
	}
	for i, g := range p.ClassicalGrids {
		if _, err := kernel.ParseFamily(string(g.Family)); err != nil {
			return fmt.Errorf("classical grid %d: %w", i, err)
		}
		if len(g.C) == 0 {
			return fmt.Errorf("classical grid %d (%s) has no C values", i, g.Family)
		}
	}
	if len(p.QuantumGrid.Entanglement) == 0 || len(p.QuantumGrid.C) == 0 {
		return fmt.Errorf("empty quantum grid")
	}
	return nil
}
