package cli

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	t.Parallel()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--unknown-flag"})

	err := root.Execute()
	require.Error(t, err)
	assert.IsType(t, usageError{}, err)
	assert.Contains(t, err.Error(), "unknown flag")
	assert.Contains(t, err.Error(), "Usage:")
}

func TestGenerateFlagErrors_AreUsageErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"malformed server var", []string{"generate", "--input", "s.yaml", "--server-var", "region"}, "--server-var"},
		{"non-boolean emit-model", []string{"generate", "--input", "s.yaml", "--emit-model=maybe"}, "--emit-model"},
		{"file-name without value", []string{"generate", "--input", "s.yaml", "--file-name"}, "--file-name"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tt.args)

			err := root.Execute()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUsage), "expected usage error, got %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "--operations", "usage should list the generate flags")
		})
	}
}
