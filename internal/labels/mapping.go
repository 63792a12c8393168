// Package labels resolves class offsets to WordNet ids through a mapping table
// and ids to readable labels through a lexical database.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/topacc/internal/utils"
)

// ErrInputNotFound is returned when a database path does not exist.
var ErrInputNotFound = utils.ErrInputNotFound

// maxLineBytes bounds a single database line.
const maxLineBytes = 1 << 20

// MappingTable indexes class offsets to WordNet ids.
type MappingTable struct {
	ids     map[int]string
	skipped int
}

// LoadMappingTable reads and indexes the mapping table at path.
func LoadMappingTable(path string) (*MappingTable, error) {
	if err := utils.CheckInputFile(path, "mapping table"); err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // G304: database path is user-provided
	if err != nil {
		return nil, fmt.Errorf("open mapping table: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing mapping table: %v\n", err)
		}
	}()
	return ParseMappingTable(f)
}

// ParseMappingTable indexes records of the form
//
//	<container>@/n<digits>/<key>.<ext> ... <offset>
//
// The first record seen for an offset wins. Lines that do not fit are skipped.
func ParseMappingTable(r io.Reader) (*MappingTable, error) {
	t := &MappingTable{ids: make(map[int]string)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		offset, id, ok := parseMappingLine(sc.Text())
		if !ok {
			if strings.TrimSpace(sc.Text()) != "" {
				t.skipped++
			}
			continue
		}
		if _, seen := t.ids[offset]; !seen {
			t.ids[offset] = id
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mapping table: %w", err)
	}
	return t, nil
}

func parseMappingLine(line string) (int, string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, "", false
	}
	offset, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || offset < 0 {
		return 0, "", false
	}
	id, ok := embeddedID(fields[0])
	if !ok {
		return 0, "", false
	}
	return offset, id, true
}

// embeddedID extracts <digits> from a key path containing "@/n<digits>/".
func embeddedID(key string) (string, bool) {
	_, rest, ok := strings.Cut(key, "@/n")
	if !ok {
		return "", false
	}
	digits, _, ok := strings.Cut(rest, "/")
	if !ok || !isDigits(digits) {
		return "", false
	}
	return digits, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Lookup returns the id recorded for offset.
func (t *MappingTable) Lookup(offset int) (string, bool) {
	id, ok := t.ids[offset]
	return id, ok
}

// Len is the number of indexed offsets.
func (t *MappingTable) Len() int { return len(t.ids) }

// Skipped is the number of non-blank lines that were not records.
func (t *MappingTable) Skipped() int { return t.skipped }
