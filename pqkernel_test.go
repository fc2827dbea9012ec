package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfig = `feature_columns: [a, b, c]
folds: 4
classical_grids:
  - family: rbf
    c: [1, 10]
    gamma: [0.5]
  - family: linear
    c: [1]
quantum_grid:
  entanglement: [linear, full]
  c: [1]
  reps: 1
alpha_steps: 4
`

func writeSignals(t *testing.T, dir string) {
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for label, offset := range []float64{0, 3} {
		var b strings.Builder
		b.WriteString("a,b,c\n")
		for i := 0; i < 16; i++ {
			fmt.Fprintf(&b, "%.3f,%.3f,%.3f\n", offset+float64(i%4)*0.2, offset-float64(i%3)*0.3, offset+float64(i%5)*0.1)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d_pqd.csv", label)), []byte(b.String()), 0o644))
	}
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "noise_0db")
	writeSignals(t, data)
	config := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(testConfig), 0o644))
	chart := filepath.Join(root, "accuracy.png")

	runCmd := RunCommand()
	runCmd.SetArgs([]string{"--config", config, "--data", data + "," + filepath.Join(root, "missing"), "--chart", chart, "--folds", "3"})
	b := bytes.NewBufferString("")
	runCmd.SetOut(b)
	require.NoError(t, runCmd.Execute())

	out := b.String()
	require.Contains(t, out, "noise_0db")
	require.Contains(t, out, "skipped "+filepath.Join(root, "missing"))
	require.NotContains(t, out, "failed")
	_, err := os.Stat(chart)
	require.NoError(t, err)
}

func TestRunBadConfig(t *testing.T) {
	runCmd := RunCommand()
	runCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	runCmd.SetOut(bytes.NewBufferString(""))
	runCmd.SetErr(bytes.NewBufferString(""))
	require.Error(t, runCmd.Execute())
}
