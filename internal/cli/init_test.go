package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "oas2client configuration")
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	require.Error(t, err)
	assert.IsType(t, usageError{}, err)
}

func TestInit_SampleConfigIsAccepted(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "oas2client.yaml")
	require.NoError(t, runInit(context.Background(), &InitConfig{OutputPath: path}))

	cfg := defaultGenerateConfig()
	require.NoError(t, applyGenerateConfigFromFile(&cfg, path), "sample config rejected")
	assert.Equal(t, "client.bal", cfg.FileName, "defaults changed by commented sample")
}
