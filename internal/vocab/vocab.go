// Package vocab provides the character vocabulary used to validate training
// transcripts: a read-only rune-to-id map loaded from a one-symbol-per-line
// file, coverage checking with exact rune positions, and a fix-list workflow
// for repairing metadata files whose text falls outside the vocabulary.
package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Map is an injective rune-to-id mapping. Ids follow file line order.
// A Map is built once and treated as read-only ground truth afterwards.
type Map struct {
	ids  map[rune]int
	size int
}

// Load reads a vocabulary file with one symbol per line; the line number
// (0-based) assigns the id. A blank line denotes the space character, which
// editors tend to strip. Duplicate symbols are an error.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %s: %w", path, err)
	}
	defer f.Close()

	ids := make(map[rune]int)
	sc := bufio.NewScanner(f)
	line := 0

	for sc.Scan() {
		raw := strings.TrimRight(sc.Text(), "\r")

		var symbol rune
		switch utf8.RuneCountInString(raw) {
		case 0:
			symbol = ' '
		case 1:
			symbol, _ = utf8.DecodeRuneInString(raw)
		default:
			return nil, fmt.Errorf("vocab: %s line %d: expected one symbol, got %q", path, line+1, raw)
		}

		if prev, exists := ids[symbol]; exists {
			return nil, fmt.Errorf("vocab: %s line %d: duplicate symbol %q (first at line %d)", path, line+1, symbol, prev+1)
		}

		ids[symbol] = line
		line++
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read %s: %w", path, err)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("vocab: %s contains no symbols", path)
	}

	return &Map{ids: ids, size: line}, nil
}

// NewMap builds a Map from an ordered symbol list. Intended for tests and
// programmatic construction.
func NewMap(symbols []rune) (*Map, error) {
	ids := make(map[rune]int, len(symbols))

	for i, r := range symbols {
		if _, exists := ids[r]; exists {
			return nil, fmt.Errorf("vocab: duplicate symbol %q at index %d", r, i)
		}

		ids[r] = i
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("vocab: no symbols")
	}

	return &Map{ids: ids, size: len(symbols)}, nil
}

// Size returns the number of mapped symbols.
func (m *Map) Size() int {
	if m == nil {
		return 0
	}

	return m.size
}

// Has reports whether r is a mapped symbol.
func (m *Map) Has(r rune) bool {
	if m == nil {
		return false
	}

	_, ok := m.ids[r]

	return ok
}

// ID returns the id for r and whether r is mapped.
func (m *Map) ID(r rune) (int, bool) {
	if m == nil {
		return 0, false
	}

	id, ok := m.ids[r]

	return id, ok
}

// UnknownRune is one unmapped character found during a coverage check.
// Pos is the 0-based rune index within the checked text.
type UnknownRune struct {
	Rune rune
	Pos  int
}

// CoverageError reports every unmapped character in a text sample.
// A coverage failure indicates a systemic tokenizer/data mismatch and is
// never downgraded to a row skip.
type CoverageError struct {
	Text    string
	Unknown []UnknownRune
}

func (e *CoverageError) Error() string {
	parts := make([]string, len(e.Unknown))
	for i, u := range e.Unknown {
		parts[i] = fmt.Sprintf("'%c'(pos %d)", u.Rune, u.Pos)
	}

	return fmt.Sprintf("unknown symbol(s) [%s] in text %q", strings.Join(parts, ", "), e.Text)
}

// Check verifies that every rune of text is a mapped symbol. It returns nil
// on full coverage, otherwise a *CoverageError naming every unmapped rune
// with its position.
func (m *Map) Check(text string) *CoverageError {
	var unknown []UnknownRune

	pos := 0
	for _, r := range text {
		if !m.Has(r) {
			unknown = append(unknown, UnknownRune{Rune: r, Pos: pos})
		}

		pos++
	}

	if len(unknown) == 0 {
		return nil
	}

	return &CoverageError{Text: text, Unknown: unknown}
}
