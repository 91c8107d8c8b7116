package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/internal/testdata"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFixtures(t *testing.T) (csvPath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "Housing.csv")
	f, err := os.Create(csvPath)
	require.NoError(t, err)
	require.NoError(t, dataset.WriteCSV(f, testdata.Housing(200, 5)))
	require.NoError(t, f.Close())

	configPath = filepath.Join(dir, "housing.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("models:\n  n_estimators: 10\n  max_depth: 6\n"), 0o644))
	return csvPath, configPath
}

func TestTrainThenPredict(t *testing.T) {
	csvPath, configPath := writeFixtures(t)
	artifacts := filepath.Join(t.TempDir(), "artifacts")

	out, err := execute(t, "train", "--config", configPath, "--data", csvPath, "--out", artifacts)
	require.NoError(t, err)
	assert.Contains(t, out, "Linear Regression")
	assert.Contains(t, out, "Best model:")
	assert.FileExists(t, filepath.Join(artifacts, "model.gob"))

	out, err = execute(t, "predict", "--config", configPath, "--dir", artifacts)
	require.NoError(t, err)
	assert.Contains(t, out, "Predicted price:")
	assert.Contains(t, out, "Estimated range:")
	assert.Contains(t, out, "Compared to average price")

	_, err = execute(t, "predict", "--config", configPath, "--dir", artifacts, "--furnishing", "luxury")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unrecognized value "luxury" for furnishingstatus`)
}

func TestPredict_NoModel(t *testing.T) {
	_, err := execute(t, "predict", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, "Model not found. Please run training first.", err.Error())
}

func TestEDA(t *testing.T) {
	csvPath, _ := writeFixtures(t)

	out, err := execute(t, "eda", "--data", csvPath, "--no-plots")
	require.NoError(t, err)
	assert.Contains(t, out, "Shape: 200 rows x 13 columns")
	assert.Contains(t, out, "Correlation matrix")
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"eda", "--log-level", "loud", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	assert.Error(t, cmd.Execute())
}
