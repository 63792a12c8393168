package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	f := newFixture(t)
	image := filepath.Join(f.images, "n01440764_1.jpeg")

	out, err := executeCommand(t, "", "classify", image, "--top", "3",
		"--model", f.model, "--map", f.mapping, "--lexicon", f.lexicon)
	require.NoError(t, err)
	assert.Equal(t,
		"1. n01443537 goldfish (offset 1, score 0.9000)\n"+
			"2. n01440764 tench (Tinca_tinca) (offset 0, score 0.8000)\n"+
			"3. n01484850  (offset 2, score 0.7000)\n",
		out)
}

func TestClassify_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := executeCommand(t, "", "classify")
	assert.Error(t, err)

	_, err = executeCommand(t, "", "classify", "x.jpeg", "--top", "0")
	assert.ErrorContains(t, err, "--top")

	_, err = executeCommand(t, "", "classify", filepath.Join(f.dir, "missing.jpeg"),
		"--model", f.model, "--map", f.mapping, "--lexicon", f.lexicon)
	assert.ErrorContains(t, err, "input not found")

	_, err = executeCommand(t, "", "classify", filepath.Join(f.images, "n01440764_1.jpeg"),
		"--model", f.model, "--map", f.mapping, "--lexicon", filepath.Join(f.dir, "missing.txt"))
	assert.ErrorContains(t, err, "lexical database")
}
