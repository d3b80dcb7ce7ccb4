package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosweep/ledger"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := run()
	return buf.String(), err
}

func writeBatch(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.jou"), []byte("/file/read-case MESH_FILE\n/solve/iterate VALUE_ITERS\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipe.msh"), []byte("mesh"), 0644))
	batch := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(batch, []byte(`
Title: cmd test
Template: template.jou
Meshes: [pipe.msh, missing.msh]
Reynolds: [50, 100]
`), 0644))
	return batch
}

func TestDerive(t *testing.T) {
	out, err := execute(t, "derive", "50", "501", "1600")
	require.NoError(t, err)
	assert.Contains(t, out, "nu = 1.0048e-06 m^2/s")
	assert.Contains(t, out, "        50    2.848408e-03      1000\n")
	assert.Contains(t, out, "       501")
	assert.Contains(t, out, "      1600")

	_, err = execute(t, "derive", "-5")
	assert.Error(t, err)
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "plan", "-I", writeBatch(t, dir))
	require.NoError(t, err)
	assert.Contains(t, out, "4 cases")
	assert.Contains(t, out, "run_pipe_Re50.jou")
	assert.Contains(t, out, filepath.Join("results", "pipe", "Re100", "console.log"))
	assert.Contains(t, out, "missing "+filepath.Join(dir, "missing.msh"))
	assert.NoFileExists(t, "run_pipe_Re50.jou")
}

func TestRunAndSummary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake solver needs /bin/sh")
	}
	var (
		dir     = t.TempDir()
		batch   = writeBatch(t, dir)
		bin     = filepath.Join(dir, "fakefluent")
		results = filepath.Join(dir, "results")
	)
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho '  iter  continuity'\necho '   10  0.01'\n"), 0755))
	out, err := execute(t, "run", "-I", batch, "--solver", bin, "--results", results, "--scripts", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "skipping 2 cases for missing")
	assert.Contains(t, out, "Converged:       2")

	rl, err := ledger.Read(filepath.Join(results, ledger.FileName))
	require.NoError(t, err)
	assert.Equal(t, 2, rl.Len())
	assert.FileExists(t, filepath.Join(dir, "run_pipe_Re100.jou"))

	out, err = execute(t, "summary", filepath.Join(results, ledger.FileName))
	require.NoError(t, err)
	assert.Contains(t, out, "Total cases:     2")

	out, err = execute(t, "classify", filepath.Join(results, "pipe", "Re50", "console.log"))
	require.NoError(t, err)
	assert.Contains(t, out, "CONVERGED")
}

func TestRunNeedsInput(t *testing.T) {
	out, err := execute(t, "run", "-I", "")
	assert.Error(t, err)
	assert.Contains(t, out, "Example File:")
}

func TestLogFileClosedOnError(t *testing.T) {
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("log-file", "")
		_ = rootCmd.PersistentFlags().Set("log-level", "warn")
	})
	var (
		dir     = t.TempDir()
		logFile = filepath.Join(dir, "gosweep.log")
	)
	_, err := execute(t, "run", "--log-file", logFile, "--log-level", "info", "-I", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.FileExists(t, logFile)
	assert.Nil(t, logCloser)
	assert.Equal(t, os.Stderr, log.StandardLogger().Out)
}
