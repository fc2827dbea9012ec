// Package selection implements cross-validated grid search over kernel
// classifier configurations.
package selection

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Fold is one train/validation partition of the training set, as sample
// indices in ascending order.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold partitions y into k folds without shuffling, keeping class
// proportions. Fold sizes per class follow the round-robin allocation of the
// sorted labels, and each class's samples are assigned to folds in order.
func StratifiedKFold(y []int, k int) ([]Fold, error) {
	n := len(y)
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cannot split %d samples into %d folds", n, k)
	}

	classIndex := map[int]int{}
	var classes []int
	for _, label := range y {
		if _, ok := classIndex[label]; !ok {
			classIndex[label] = 0
			classes = append(classes, label)
		}
	}
	sort.Ints(classes)
	for i, label := range classes {
		classIndex[label] = i
	}

	counts := make([]int, len(classes))
	encoded := make([]int, n)
	for i, label := range y {
		encoded[i] = classIndex[label]
		counts[encoded[i]]++
	}
	for c, count := range counts {
		if count < k {
			log.Warn().Int("class", classes[c]).Int("members", count).Int("folds", k).
				Msg("least populated class has fewer members than folds")
		}
	}

	sorted := append([]int{}, encoded...)
	sort.Ints(sorted)
	// allocation[f][c] is the number of class c samples in fold f
	allocation := make([][]int, k)
	for f := range allocation {
		allocation[f] = make([]int, len(classes))
		for i := f; i < n; i += k {
			allocation[f][sorted[i]]++
		}
	}

	assignment := make([]int, n)
	for c := range classes {
		var foldIDs []int
		for f := 0; f < k; f++ {
			for j := 0; j < allocation[f][c]; j++ {
				foldIDs = append(foldIDs, f)
			}
		}
		next := 0
		for i := range encoded {
			if encoded[i] == c {
				assignment[i] = foldIDs[next]
				next++
			}
		}
	}

	folds := make([]Fold, k)
	for i, f := range assignment {
		for g := range folds {
			if g == f {
				folds[g].Test = append(folds[g].Test, i)
			} else {
				folds[g].Train = append(folds[g].Train, i)
			}
		}
	}
	return folds, nil
}

func labelsAt(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
