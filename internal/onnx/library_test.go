package onnx

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryNameForOS(t *testing.T) {
	tests := map[string]string{
		"linux":   "libonnxruntime.so",
		"darwin":  "libonnxruntime.dylib",
		"windows": "onnxruntime.dll",
	}
	for goos, want := range tests {
		got, err := libraryNameForOS(goos)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := libraryNameForOS("plan9")
	assert.Error(t, err)
}

func TestFindProjectRootFrom(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o600))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := findProjectRootFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindLibraryPath_EnvOverride(t *testing.T) {
	name, err := libraryNameForOS(runtime.GOOS)
	if err != nil {
		t.Skip(err)
	}
	lib := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(lib, []byte{}, 0o600))

	t.Setenv(EnvLibraryPath, lib)
	got, err := FindLibraryPath()
	require.NoError(t, err)
	assert.Equal(t, lib, got)
}

func TestFindLibraryPath_EnvOverrideMissing(t *testing.T) {
	t.Setenv(EnvLibraryPath, filepath.Join(t.TempDir(), "nope.so"))
	_, err := FindLibraryPath()
	assert.Error(t, err)
}

func TestCheckRuntime_Smoke(t *testing.T) {
	var out bytes.Buffer
	if err := CheckRuntime(&out); err != nil {
		t.Skipf("ONNX Runtime not available: %v", err)
	}
	assert.Contains(t, out.String(), "initialized")
}
