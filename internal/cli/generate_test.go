package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests swap generateRunner and therefore do not run in parallel.

func captureGenerateConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureGenerateConfig(t,
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--out", "./build",
		"--tags", "pet, store,pet",
		"--operations", "getUserByName",
		"--server-var", "region=us,port=8443",
		"--file-name", "petstore.bal",
		"--emit-model",
		"--dry-run",
		"--force",
	)
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "spec.yaml", captured.Input)
	assert.Equal(t, "./build", captured.Out)
	assert.Equal(t, []string{"pet", "store"}, captured.Tags)
	assert.Equal(t, []string{"getUserByName"}, captured.Operations)
	assert.Equal(t, map[string]string{"region": "us", "port": "8443"}, captured.ServerVars)
	assert.Equal(t, "petstore.bal", captured.FileName)
	assert.True(t, captured.EmitModel)
	assert.True(t, captured.DryRun)
	assert.True(t, captured.Force)
	assert.True(t, captured.Verbose)
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureGenerateConfig(t, "generate", "--input", "spec.yaml")
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "client.bal", captured.FileName)
	assert.Nil(t, captured.Tags)
	assert.Nil(t, captured.Operations)
	assert.Nil(t, captured.ServerVars)
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
tags:
  - cfgTag
operations: cfgOpA, cfgOpB
server_vars:
  region: eu
  port: 443
file-name: cfg.bal
emitModel: yes
dryRun: true
force: false
verbose: true
`) + "\n"

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	captured, err := captureGenerateConfig(t,
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--tags", "flagTag",
		"--server-var", "region=us",
		"--dry-run=false",
		"--force",
	)
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "flag-spec.yaml", captured.Input)
	assert.Equal(t, "from-config", captured.Out)
	assert.Equal(t, []string{"flagTag"}, captured.Tags)
	assert.Equal(t, []string{"cfgOpA", "cfgOpB"}, captured.Operations)
	assert.Equal(t, map[string]string{"region": "us", "port": "443"}, captured.ServerVars, "flag should refine config")
	assert.Equal(t, "cfg.bal", captured.FileName)
	assert.True(t, captured.EmitModel, "emit-model from config file")
	assert.False(t, captured.DryRun, "dry-run after flag override")
	assert.True(t, captured.Force, "force after flag override")
	assert.True(t, captured.Verbose, "verbose from config file")
	assert.Equal(t, configPath, captured.ConfigPath)
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("unknown: value\n"), 0o600))

	_, err := captureGenerateConfig(t, "--config", configPath, "generate", "--input", "spec.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestGenerateConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate"}, "--input is required"},
		{"file name with directory", []string{"generate", "--input", "s.yaml", "--file-name", "a/b.bal"}, "plain file name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := captureGenerateConfig(t, tt.args...)
			require.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDeriveOutDir(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Swagger Petstore":    "swagger-petstore",
		"  Pet_Store.API v2 ": "pet-store-api-v2",
		"":                    "",
		"!!!":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, deriveOutDir(in), in)
	}
}
