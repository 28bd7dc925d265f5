package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// FixList maps an offending symbol to its replacement text. A nil
// replacement means "leave this symbol unchanged" (tracked but not
// rewritten), mirroring a reviewer's decision to accept the symbol.
type FixList struct {
	rules map[rune]*string
}

// LoadFixList reads a fix-list JSON file: an object whose keys are single
// characters and whose values are replacement strings or null.
func LoadFixList(path string) (*FixList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixlist: read %s: %w", path, err)
	}

	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixlist: parse %s: %w", path, err)
	}

	rules := make(map[rune]*string, len(raw))

	for key, repl := range raw {
		if utf8.RuneCountInString(key) != 1 {
			return nil, fmt.Errorf("fixlist: %s: key %q must be a single character", path, key)
		}

		r, _ := utf8.DecodeRuneInString(key)
		rules[r] = repl
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("fixlist: %s contains no rules", path)
	}

	return &FixList{rules: rules}, nil
}

// Apply rewrites text according to the fix list and reports whether any
// replacement fired.
func (f *FixList) Apply(text string) (string, bool) {
	var b strings.Builder
	changed := false

	for _, r := range text {
		repl, ok := f.rules[r]
		if !ok || repl == nil {
			b.WriteRune(r)
			continue
		}

		b.WriteString(*repl)
		changed = true
	}

	return b.String(), changed
}

// FixReport summarizes an in-place metadata rewrite.
type FixReport struct {
	Changed   int
	Untouched int
}

// ApplyToMetadata rewrites the text field of every well-formed row of a
// pipe-delimited metadata file in place, after writing a .bak copy of the
// original. Rows that are blank or do not split into five fields pass
// through unmodified and count as untouched.
func (f *FixList) ApplyToMetadata(metaPath string) (FixReport, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return FixReport{}, fmt.Errorf("fixlist: read %s: %w", metaPath, err)
	}

	info, err := os.Stat(metaPath)
	if err != nil {
		return FixReport{}, fmt.Errorf("fixlist: stat %s: %w", metaPath, err)
	}

	lines := strings.Split(string(data), "\n")

	var report FixReport
	out := make([]string, len(lines))

	for i, line := range lines {
		// Preserve the trailing empty element produced by a final newline.
		if i == len(lines)-1 && line == "" {
			out[i] = line
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != 5 {
			out[i] = line
			report.Untouched++
			continue
		}

		fixed, changed := f.Apply(fields[1])
		if !changed {
			out[i] = line
			report.Untouched++
			continue
		}

		fields[1] = fixed
		out[i] = strings.Join(fields, "|")
		report.Changed++
	}

	if err := os.WriteFile(metaPath+".bak", data, info.Mode()); err != nil {
		return FixReport{}, fmt.Errorf("fixlist: write backup %s.bak: %w", metaPath, err)
	}

	if err := os.WriteFile(metaPath, []byte(strings.Join(out, "\n")), info.Mode()); err != nil {
		return FixReport{}, fmt.Errorf("fixlist: rewrite %s: %w", metaPath, err)
	}

	return report, nil
}
