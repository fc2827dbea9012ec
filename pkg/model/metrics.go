package model

import (
	"sort"

	"github.com/nlpodyssey/spago/pkg/ml/stats"
)

// Metrics summarises predictions against ground truth. Precision, Recall
// and F1 are macro averages over every class seen in either slice.
type Metrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	PerClass  map[int]*stats.ClassMetrics
}

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

func Evaluate(yTrue, yPred []int) Metrics {
	perClass := map[int]*stats.ClassMetrics{}
	counter := func(label int) *stats.ClassMetrics {
		m, ok := perClass[label]
		if !ok {
			m = stats.NewMetricCounter()
			perClass[label] = m
		}
		return m
	}
	for i := range yTrue {
		labelMetrics := counter(yTrue[i])
		predictedMetrics := counter(yPred[i])
		if yTrue[i] == yPred[i] {
			labelMetrics.IncTruePos()
		} else {
			labelMetrics.IncFalseNeg()
			predictedMetrics.IncFalsePos()
		}
	}

	result := Metrics{Accuracy: Accuracy(yTrue, yPred), PerClass: perClass}
	if len(perClass) == 0 {
		return result
	}
	for _, label := range SortedClasses(perClass) {
		p, r, f := ClassScores(perClass[label])
		result.Precision += p
		result.Recall += r
		result.F1 += f
	}
	n := float64(len(perClass))
	result.Precision /= n
	result.Recall /= n
	result.F1 /= n
	return result
}

// ClassScores returns precision, recall and F1 of one class; empty
// denominators count as zero.
func ClassScores(m *stats.ClassMetrics) (precision, recall, f1 float64) {
	if m.TruePos+m.FalsePos > 0 {
		precision = m.Precision()
	}
	if m.TruePos+m.FalseNeg > 0 {
		recall = m.Recall()
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return
}

// SortedClasses returns the class labels of m in ascending order.
func SortedClasses(perClass map[int]*stats.ClassMetrics) []int {
	out := make([]int, 0, len(perClass))
	for label := range perClass {
		out = append(out, label)
	}
	sort.Ints(out)
	return out
}
