package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(CreateTempDir(t), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, FileExists(dir))
}

func TestWriteTestImage_AllFormats(t *testing.T) {
	dir := CreateTempDir(t)
	for _, name := range []string{"a.png", "b.jpeg", "c.jpg", "d.gif", "e.bmp"} {
		path := WriteTestImage(t, dir, name, 8, 4, color.White)
		assert.True(t, FileExists(path), name)
	}
}

func TestMappingLine(t *testing.T) {
	assert.Equal(t, "train.zip@/n01772222/n01772222_7.JPEG\t42", MappingLine("01772222", 7, 42))
}

func TestLexiconLine(t *testing.T) {
	line := LexiconLine("01772222", 5, "cat", "feline")
	assert.Contains(t, line, "01772222 05 n 02 cat 0 feline")

	line = LexiconLine("01772222", 12, "cat", "")
	assert.Contains(t, line, "01772222 12 n 02 cat 0 001")
}
