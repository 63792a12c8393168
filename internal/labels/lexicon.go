package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/topacc/internal/utils"
)

const (
	minRank = 10
	maxRank = 99
)

// Record is one lexical-database entry.
type Record struct {
	ID      string
	Rank    int
	Term    string
	Synonym string
}

// Label renders "term (synonym)", or just the term when there is no synonym.
func (r Record) Label() string {
	if r.Synonym == "" {
		return r.Term
	}
	return r.Term + " (" + r.Synonym + ")"
}

// Lexicon indexes lexical records by id.
type Lexicon struct {
	records map[string]Record
}

// LoadLexicon reads and indexes the lexical database at path.
func LoadLexicon(path string) (*Lexicon, error) {
	if err := utils.CheckInputFile(path, "lexical database"); err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // G304: database path is user-provided
	if err != nil {
		return nil, fmt.Errorf("open lexical database: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing lexical database: %v\n", err)
		}
	}()
	return ParseLexicon(f)
}

// ParseLexicon indexes records of the form
//
//	<id> <rank> <pos-tag> <digit-fields...> <term> [<digit> <synonym>] ...
//
// where rank is two digits in [10,99] and pos-tag a single word character.
// The first record for an id wins.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{records: make(map[string]Record)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		rec, ok := parseLexiconLine(norm.NFC.String(sc.Text()))
		if !ok {
			continue
		}
		if _, seen := lex.records[rec.ID]; !seen {
			lex.records[rec.ID] = rec
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexical database: %w", err)
	}
	return lex, nil
}

func parseLexiconLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || !isDigits(fields[0]) {
		return Record{}, false
	}
	if len(fields[1]) != 2 || !isDigits(fields[1]) {
		return Record{}, false
	}
	rank, _ := strconv.Atoi(fields[1])
	if rank < minRank || rank > maxRank {
		return Record{}, false
	}
	if !isPOSTag(fields[2]) {
		return Record{}, false
	}

	i := 3
	for i < len(fields) && isDigits(fields[i]) {
		i++
	}
	// At least one numeric field separates the tag from the term.
	if i == 3 || i >= len(fields) || !isWord(fields[i]) {
		return Record{}, false
	}
	rec := Record{ID: fields[0], Rank: rank, Term: fields[i]}
	if i+2 < len(fields) && isSingleDigit(fields[i+1]) && isWord(fields[i+2]) {
		rec.Synonym = fields[i+2]
	}
	return rec, true
}

func isPOSTag(s string) bool {
	r := []rune(s)
	return len(r) == 1 && isWordRune(r[0])
}

func isSingleDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

// isWord reports whether s is made of word characters and is not purely numeric.
func isWord(s string) bool {
	letter := false
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letter = true
		}
	}
	return letter
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' || r == '\'' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Get returns the record for id.
func (l *Lexicon) Get(id string) (Record, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

// Label returns the rendered label for id, or "" when id is unknown.
func (l *Lexicon) Label(id string) string {
	if id == "" {
		return ""
	}
	rec, ok := l.records[norm.NFC.String(id)]
	if !ok {
		return ""
	}
	return rec.Label()
}

// Len is the number of indexed ids.
func (l *Lexicon) Len() int { return len(l.records) }
