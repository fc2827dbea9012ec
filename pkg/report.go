package pkg

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

var tableHeader = []string{
	"Dataset", "Classical", "Acc", "Quantum", "Acc", "Alpha", "Dual C", "Dual Acc", "Precision", "Recall", "F1", "Duration",
}

func tableRow(d *DatasetResult) []string {
	return []string{
		filepath.Base(d.Dataset),
		d.Classical.Config.String(),
		fmt.Sprintf("%.3f", d.Classical.Metrics.Accuracy),
		d.Quantum.Config.String(),
		fmt.Sprintf("%.3f", d.Quantum.Metrics.Accuracy),
		fmt.Sprintf("%.2f", d.Dual.Config.Alpha),
		fmt.Sprintf("%g", d.Dual.Config.C),
		fmt.Sprintf("%.3f", d.Dual.Metrics.Accuracy),
		fmt.Sprintf("%.3f", d.Dual.Metrics.Precision),
		fmt.Sprintf("%.3f", d.Dual.Metrics.Recall),
		fmt.Sprintf("%.3f", d.Dual.Metrics.F1),
		d.Duration.Round(time.Millisecond).String(),
	}
}

const dualCNote = "dual C is borrowed from the classical winner"

// WriteTable writes one aligned row per completed dataset, followed by the
// skipped and failed datasets.
func WriteTable(w io.Writer, r *Results) error {
	rows := [][]string{tableHeader}
	for _, d := range r.Datasets {
		rows = append(rows, tableRow(d))
	}
	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.RunID)
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
		if i == 0 {
			rules := make([]string, len(widths))
			for j, width := range widths {
				rules[j] = strings.Repeat("-", width)
			}
			b.WriteString(strings.Join(rules, "  "))
			b.WriteString("\n")
		}
	}
	if len(r.Datasets) > 0 {
		fmt.Fprintf(&b, "%s\n", dualCNote)
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "skipped %s: no data\n", s)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "failed %s: %s\n", f.Dataset, f.Err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
