package pkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pqkernel/pkg/io"
	"pqkernel/pkg/kernel"
	"pqkernel/pkg/model"
	"pqkernel/pkg/preprocess"
	"pqkernel/pkg/selection"
)

// KernelScore is the outcome of one kernel family: the selected
// configuration, its mean cross-validated accuracy and the metrics of the
// refit classifier on the test partition.
type KernelScore struct {
	Config  model.Config
	CVScore float64
	Metrics model.Metrics

	// SupportVectors counts the distinct training samples kept by the refit model.
	SupportVectors int
}

type DatasetResult struct {
	Dataset      string
	Samples      int
	TrainSamples int
	TestSamples  int
	Components   int

	Classical KernelScore
	Quantum   KernelScore
	Dual      KernelScore

	// Model is the refit dual kernel classifier with its preprocessing.
	Model    *model.Model
	Duration time.Duration
}

type DatasetFailure struct {
	Dataset string
	Err     error
}

// Results accumulates the outcome of every dataset of a run.
type Results struct {
	RunID    string
	Datasets []*DatasetResult
	Skipped  []string
	Failed   []DatasetFailure
}

func NewResults() *Results {
	return &Results{RunID: uuid.New().String()}
}

func (r *Results) Add(d *DatasetResult) {
	r.Datasets = append(r.Datasets, d)
}

func (r *Results) Skip(dataset string) {
	r.Skipped = append(r.Skipped, dataset)
}

func (r *Results) Fail(dataset string, err error) {
	r.Failed = append(r.Failed, DatasetFailure{Dataset: dataset, Err: err})
}

// Benchmark runs the classical, quantum and dual kernel comparison.
type Benchmark struct {
	Params  ExperimentParameters
	Factory model.KernelFactory
}

func Run(params ExperimentParameters) (*Results, error) {
	return (&Benchmark{Params: params}).Run()
}

func RunDataset(dir string, params ExperimentParameters) (*DatasetResult, error) {
	return (&Benchmark{Params: params}).RunDataset(log.Logger, dir)
}

// Run processes every dataset directory in order. Missing or empty
// directories are skipped; any other dataset failure is recorded and the run
// moves on to the next one.
func (b *Benchmark) Run() (*Results, error) {
	if err := b.Params.Validate(); err != nil {
		return nil, err
	}
	results := NewResults()
	runLogger := log.With().Str("run_id", results.RunID).Logger()
	runLogger.Info().Int("datasets", len(b.Params.DataDirs)).Msg("starting benchmark")

	for _, dir := range b.Params.DataDirs {
		logger := runLogger.With().Str("dataset", dir).Logger()
		r, err := b.RunDataset(logger, dir)
		switch {
		case errors.Is(err, io.ErrNoData):
			logger.Warn().Err(err).Msg("skipping dataset")
			results.Skip(dir)
		case err != nil:
			logger.Error().Err(err).Msg("dataset failed")
			results.Fail(dir, err)
		default:
			results.Add(r)
		}
	}
	runLogger.Info().Int("completed", len(results.Datasets)).
		Int("skipped", len(results.Skipped)).
		Int("failed", len(results.Failed)).
		Msg("benchmark finished")
	return results, nil
}

func (b *Benchmark) RunDataset(logger zerolog.Logger, dir string) (*DatasetResult, error) {
	start := time.Now()
	p := b.Params

	metaData, x, y, dataErrors, err := io.LoadDirectory(io.DataParameters{
		Directory:         dir,
		FeatureColumns:    p.FeatureColumns,
		DropInvalidLabels: p.DropInvalidLabels,
	})
	printDataErrors(logger, dataErrors)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("samples", len(y)).Ints("classes", metaData.Classes()).Msg("dataset loaded")

	data, err := io.NewDataSet(x, y, p.RndSeed)
	if err != nil {
		return nil, err
	}
	train, test, err := data.TrainTestSplit(p.TestFraction)
	if err != nil {
		return nil, fmt.Errorf("error splitting dataset: %w", err)
	}

	pipeline := preprocess.NewStandardPipeline(p.VarianceRetained, p.RangeMin, p.RangeMax)
	xTrain, err := pipeline.FitTransform(train.X)
	if err != nil {
		return nil, fmt.Errorf("error preprocessing training data: %w", err)
	}
	_, components := xTrain.Dims()
	logger.Info().Int("train", train.Size()).Int("test", test.Size()).Int("components", components).Msg("preprocessed")

	folds, err := selection.StratifiedKFold(train.Y, p.Folds)
	if err != nil {
		return nil, fmt.Errorf("error building folds: %w", err)
	}
	evaluator := selection.NewKernelEvaluator(xTrain, train.Y, b.Factory)

	classical, grid, err := SearchClassical(logger, p.ClassicalGrids, folds, evaluator)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("family", string(p.ClassicalGrids[grid].Family)).
		Str("best", classical.Best.String()).
		Float64("score", classical.BestScore).
		Msg("best classical kernel")
	quantum, err := SearchQuantum(logger, p.QuantumGrid, folds, evaluator)
	if err != nil {
		return nil, err
	}
	dual, err := SearchDual(logger, classical.Best, quantum.Best, kernel.AlphaGrid(p.AlphaSteps), folds, evaluator)
	if err != nil {
		return nil, err
	}

	result := &DatasetResult{
		Dataset:      dir,
		Samples:      data.Size(),
		TrainSamples: train.Size(),
		TestSamples:  test.Size(),
		Components:   components,
	}
	refit := func(r *selection.Result) (KernelScore, *model.Model, error) {
		clf := model.NewKernelSVC(r.Best, b.Factory)
		if err := clf.Fit(xTrain, train.Y); err != nil {
			return KernelScore{}, nil, fmt.Errorf("error refitting %s: %w", r.Best, err)
		}
		support := clf.Model().NumSupport()
		logger.Debug().Str("kernel", clf.Kernel().String()).Int("support_vectors", support).Msg("refit")
		m := &model.Model{MetaData: metaData, Preprocessing: pipeline, Classifier: clf}
		pred, err := m.Predict(test.X)
		if err != nil {
			return KernelScore{}, nil, fmt.Errorf("error predicting with %s: %w", r.Best, err)
		}
		score := KernelScore{Config: r.Best, CVScore: r.BestScore, Metrics: model.Evaluate(test.Y, pred), SupportVectors: support}
		return score, m, nil
	}
	if result.Classical, _, err = refit(classical); err != nil {
		return nil, err
	}
	if result.Quantum, _, err = refit(quantum); err != nil {
		return nil, err
	}
	if result.Dual, result.Model, err = refit(dual); err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)

	logMetrics(logger, "classical", result.Classical.Metrics)
	logMetrics(logger, "quantum", result.Quantum.Metrics)
	logMetrics(logger, "dual", result.Dual.Metrics)
	logger.Info().Dur("duration", result.Duration).Msg("dataset done")
	return result, nil
}
