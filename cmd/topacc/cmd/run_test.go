package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/topacc/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_TopFive(t *testing.T) {
	f := newFixture(t)

	out, err := executeCommand(t, "", f.runArgs()...)
	require.NoError(t, err)
	assert.Equal(t, "The match percentage is at 100%\n", out)
}

func TestRun_Strict(t *testing.T) {
	f := newFixture(t)

	out, err := executeCommand(t, "", f.runArgs("--strict")...)
	require.NoError(t, err)
	assert.Equal(t, "The match percentage is at 0%\n", out)
}

func TestRun_AskStrict(t *testing.T) {
	tests := []struct {
		answer string
		want   string
	}{
		{answer: "y\n", want: "0%"},
		{answer: "Y\n", want: "100%"},
		{answer: "yes\n", want: "100%"},
		{answer: "\n", want: "100%"},
		{answer: "", want: "100%"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			f := newFixture(t)
			out, err := executeCommandOutputs(t, tt.answer, f.runArgs("--ask-strict")...)
			require.NoError(t, err)
			assert.Equal(t, strictPrompt+"\n", out.Stderr)
			assert.Equal(t, "The match percentage is at "+tt.want+"\n", out.Stdout)
		})
	}
}

func TestRun_AskStrictKeepsStdoutParseable(t *testing.T) {
	f := newFixture(t)

	out, err := executeCommandOutputs(t, "y\n", f.runArgs("--ask-strict", "--format", "json")...)
	require.NoError(t, err)
	assert.Equal(t, strictPrompt+"\n", out.Stderr)

	var res metrics.Result
	require.NoError(t, json.Unmarshal([]byte(out.Stdout), &res))
	assert.True(t, res.Strict)
	assert.Equal(t, 2, res.Total)
	assert.Zero(t, res.Matched)
}

func TestRun_MeasurementSettings(t *testing.T) {
	t.Run("defaults log no warning", func(t *testing.T) {
		f := newFixture(t)
		out, err := executeCommandOutputs(t, "", f.runArgs()...)
		require.NoError(t, err)
		assert.NotContains(t, out.Logs, "non-standard measurement settings")
	})

	t.Run("top_k changes the measurement", func(t *testing.T) {
		t.Setenv("TOPACC_EVAL_TOP_K", "1")
		f := newFixture(t)
		out, err := executeCommandOutputs(t, "", f.runArgs()...)
		require.NoError(t, err)
		assert.Equal(t, "The match percentage is at 0%\n", out.Stdout)
		assert.Contains(t, out.Logs, "non-standard measurement settings")
		assert.Contains(t, out.Logs, `"top_k":1`)
	})

	t.Run("mean centering disabled", func(t *testing.T) {
		t.Setenv("TOPACC_EVAL_MEAN_CENTER", "false")
		f := newFixture(t)
		out, err := executeCommandOutputs(t, "", f.runArgs()...)
		require.NoError(t, err)
		assert.Contains(t, out.Logs, `"mean_center":false`)
	})

	t.Run("help names the keys", func(t *testing.T) {
		out, err := executeCommand(t, "", "run", "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "eval.mean_center")
		assert.Contains(t, out, "eval.top_k")
	})
}

func TestAskStrictMode(t *testing.T) {
	var out strings.Builder
	strict, err := askStrictMode(strings.NewReader("y\r\n"), &out)
	require.NoError(t, err)
	assert.True(t, strict)
	assert.Equal(t, strictPrompt+"\n", out.String())

	strict, err = askStrictMode(strings.NewReader(" y\n"), &out)
	require.NoError(t, err)
	assert.False(t, strict)
}

func TestRun_JSONWithMetricsFile(t *testing.T) {
	f := newFixture(t)
	promPath := filepath.Join(f.dir, "run.prom")

	out, err := executeCommand(t, "", f.runArgs("--format", "json", "--workers", "2", "--metrics-file", promPath)...)
	require.NoError(t, err)

	var res metrics.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, testID, res.ExpectedID)
	require.Len(t, res.Images, 2)
	assert.Equal(t, []string{"01443537", testID, "01484850", "01491361", "01494475"}, res.Images[0].WordnetIDs)

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "topacc_match_percentage")
}

func TestRun_PrefixedID(t *testing.T) {
	f := newFixture(t)
	args := f.runArgs()
	args[6] = "n" + testID

	out, err := executeCommand(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "100%")
}

func TestRun_Errors(t *testing.T) {
	f := newFixture(t)

	t.Run("missing images flag", func(t *testing.T) {
		_, err := executeCommand(t, "", "run", "--id", testID)
		assert.ErrorContains(t, err, "--images")
	})

	t.Run("missing id flag", func(t *testing.T) {
		_, err := executeCommand(t, "", "run", "--images", f.images)
		assert.ErrorContains(t, err, "--id")
	})

	t.Run("missing model", func(t *testing.T) {
		args := f.runArgs()
		args[2] = filepath.Join(f.dir, "missing.onnx")
		_, err := executeCommand(t, "", args...)
		assert.ErrorIs(t, err, metrics.ErrInputNotFound)
	})

	t.Run("missing mapping table", func(t *testing.T) {
		args := f.runArgs()
		args[8] = filepath.Join(f.dir, "missing.txt")
		_, err := executeCommand(t, "", args...)
		assert.ErrorIs(t, err, metrics.ErrInputNotFound)
	})

	t.Run("no matching images", func(t *testing.T) {
		args := f.runArgs()
		args[6] = "02084071"
		_, err := executeCommand(t, "", args...)
		assert.ErrorIs(t, err, metrics.ErrNoInputImages)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := executeCommand(t, "", f.runArgs("--format", "xml")...)
		assert.ErrorContains(t, err, "invalid output format")
	})
}
