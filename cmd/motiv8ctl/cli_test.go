package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		catalogDryRun = false
		levelPoints = 0
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestLevelCommand(t *testing.T) {
	out, err := execute(t, "level", "--points", "1000")
	require.NoError(t, err)
	assert.Equal(t, "points=1000 level=2 next=3 pointsToNext=1500\n", out)
}

func TestLevelCommandRejectsNegative(t *testing.T) {
	_, err := execute(t, "level", "--points=-5")
	assert.Error(t, err)
}

func TestCatalogImportDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
missions:
  - id: run-5k
    name: Run 5k
    type: distance
    targetValue: 5
    unit: km
    xpReward: 100
    coinReward: 10
  - id: plank
    name: Plank
    type: time
    targetValue: 60
    unit: s
`), 0o600))

	out, err := execute(t, "catalog", "import", "--file", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "validated 2 missions")
	assert.Contains(t, out, "run-5k")
}

func TestCatalogImportDryRunRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`- {id: x, name: X, type: swim, targetValue: 1, unit: m}`), 0o600))

	_, err := execute(t, "catalog", "import", "--file", path, "--dry-run")
	assert.Error(t, err)
}
