package testutil

import (
	"fmt"
	"strings"
	"testing"
)

// MappingLine renders one mapping-table record in the train map layout.
func MappingLine(id string, key int, offset int) string {
	return fmt.Sprintf("train.zip@/n%s/n%s_%d.JPEG\t%d", id, id, key, offset)
}

// LexiconLine renders one lexical-database record. An empty synonym omits the
// trailing synonym field.
func LexiconLine(id string, rank int, term, synonym string) string {
	line := fmt.Sprintf("%s %02d n 02 %s", id, rank, term)
	if synonym != "" {
		line += " 0 " + synonym
	}
	return line + " 0 001 @ 01771417 n 0000 | a placeholder gloss"
}

// WriteMappingTable writes a mapping table assigning ids[i] to offset i.
func WriteMappingTable(t *testing.T, dir string, ids []string) string {
	t.Helper()

	var b strings.Builder
	for offset, id := range ids {
		b.WriteString(MappingLine(id, 1000+offset, offset))
		b.WriteByte('\n')
	}
	return WriteFile(t, dir, "train_map.txt", b.String())
}

// WriteLexicon writes the given lines as a lexical database.
func WriteLexicon(t *testing.T, dir string, lines ...string) string {
	t.Helper()

	return WriteFile(t, dir, "wordnet.txt", strings.Join(lines, "\n")+"\n")
}
