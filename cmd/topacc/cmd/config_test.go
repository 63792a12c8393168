package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigShow(t *testing.T) {
	out, err := executeCommand(t, "", "config", "show", "--log-level", "warn")
	require.NoError(t, err)

	var shown map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "warn", shown["log_level"])
	eval, ok := shown["eval"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 224, eval["image_size"])
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topacc.yaml")

	out, err := executeCommand(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "expected_id")

	_, err = executeCommand(t, "", "config", "init", path)
	assert.Error(t, err)
}
