package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteHelpAndVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "help flag", args: []string{"--help"}},
		{name: "version command", args: []string{"version"}},
		{name: "no args shows help", args: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			err := rootCmd.Execute()
			assert.NoError(t, err)
		})
	}
}

func TestCompressDecompressRoundTripViaCLI(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	compressed := filepath.Join(dir, "src.txt.zst")
	restored := filepath.Join(dir, "restored.txt")

	require.NoError(t, os.WriteFile(src, bytes.Repeat([]byte("cli round trip "), 200), 0o644))

	rootCmd.SetArgs([]string{"compress", src, compressed})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(compressed)
	require.NoError(t, err)

	rootCmd.SetArgs([]string{"decompress", compressed, restored})
	require.NoError(t, rootCmd.Execute())

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
