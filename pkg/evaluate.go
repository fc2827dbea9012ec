package pkg

import (
	"strconv"

	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/rs/zerolog"

	"pqkernel/pkg/model"
)

func logMetrics(logger zerolog.Logger, kernelType string, m model.Metrics) {
	for _, class := range model.SortedClasses(m.PerClass) {
		result := m.PerClass[class]
		precision, recall, f1 := model.ClassScores(result)
		logger.Debug().Str("Kernel", kernelType).
			Str("Class", strconv.Itoa(class)).
			Int("TP", result.TruePos).
			Int("FP", result.FalsePos).
			Int("FN", result.FalseNeg).
			Float64("Precision", precision).
			Float64("Recall", recall).
			Float64("F1", f1).
			Msg("")
	}
	logger.Info().Str("Kernel", kernelType).
		Float64("Accuracy", m.Accuracy).
		Float64("MacroPrecision", m.Precision).
		Float64("MacroRecall", m.Recall).
		Float64("MacroF1", m.F1).
		Float64("MicroF1", microF1(m.PerClass)).
		Msg("")
}

func microF1(perClass map[int]*stats.ClassMetrics) float64 {
	micro := stats.NewMetricCounter()
	for _, result := range perClass {
		micro.TruePos += result.TruePos
		micro.FalsePos += result.FalsePos
		micro.FalseNeg += result.FalseNeg
	}
	_, _, f1 := model.ClassScores(micro)
	return f1
}
