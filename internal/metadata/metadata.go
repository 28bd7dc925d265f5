// Package metadata ingests pipe-delimited corpus metadata into validated
// records with known durations. Row-level defects (malformed lines, missing
// audio, out-of-range durations) skip the row and continue; vocabulary
// coverage failures and empty results abort the whole file.
package metadata

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-tts-dataprep/internal/audio"
	"github.com/example/go-tts-dataprep/internal/vocab"
)

// Record is one validated (audio, transcript) training unit. Records are
// immutable after creation.
type Record struct {
	AudioPath string
	Text      string
	Speaker   string
	Emotion   string
	Language  string
	Duration  float64
}

// DurationPolicy bounds accepted clip lengths. Min is exclusive unless
// MinInclusive is set; Max is always inclusive.
type DurationPolicy struct {
	Min          float64
	Max          float64
	MinInclusive bool
}

// RawClipPolicy accepts 0.3 < duration <= 30 seconds, the tolerant bound
// used when ingesting uncurated recordings.
func RawClipPolicy() DurationPolicy {
	return DurationPolicy{Min: 0.3, Max: 30}
}

// CuratedClipPolicy accepts 1 <= duration <= 30 seconds, the stricter bound
// used for curated corpora. Kept separate from RawClipPolicy on purpose;
// the two filters are configured independently.
func CuratedClipPolicy() DurationPolicy {
	return DurationPolicy{Min: 1, Max: 30, MinInclusive: true}
}

// Accepts reports whether d falls inside the policy bounds.
func (p DurationPolicy) Accepts(d float64) bool {
	if p.MinInclusive {
		if d < p.Min {
			return false
		}
	} else if d <= p.Min {
		return false
	}

	return d <= p.Max
}

func (p DurationPolicy) String() string {
	open := "("
	if p.MinInclusive {
		open = "["
	}

	return fmt.Sprintf("%s%g, %g]s", open, p.Min, p.Max)
}

// ErrNoValidRows is returned when a metadata file yields zero records.
// An empty dataset is never silently accepted.
var ErrNoValidRows = errors.New("no valid rows in metadata file")

// Parser turns a metadata file plus an audio root into validated Records.
type Parser struct {
	// AudioRoot is prepended to each row's file name.
	AudioRoot string

	// Durations bounds accepted clip lengths.
	Durations DurationPolicy

	// Prober resolves clip durations without decoding. Defaults to the
	// WAV header prober.
	Prober audio.Prober

	// Vocab, when non-nil, makes unmapped transcript characters fatal for
	// the whole file.
	Vocab *vocab.Map

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Stats counts per-file parse outcomes.
type Stats struct {
	Kept          int
	Malformed     int
	MissingAudio  int
	ProbeFailures int
	BadDuration   int
	EmptyText     int
}

// Parse reads one metadata file and returns its validated records.
//
// Rows are skipped (never fatal) for malformed shape, missing audio files,
// probe failures, out-of-range durations, and empty normalized text. A
// vocabulary coverage failure aborts the entire file: partial coverage
// would silently corrupt downstream tokenization, so it must be repaired
// at the source (see the fix-list workflow) rather than skipped.
func (p *Parser) Parse(ctx context.Context, metaPath string) ([]Record, Stats, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	prober := p.Prober
	if prober == nil {
		prober = audio.WAVProber()
	}

	f, err := os.Open(metaPath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("metadata: open %s: %w", metaPath, err)
	}
	defer f.Close()

	log.Info("parsing metadata", "file", metaPath, "durations", p.Durations.String())

	var records []Record
	var stats Stats

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for sc.Scan() {
		lineNo++

		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" || !strings.Contains(line, "|") {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != 5 {
			log.Warn("skipping malformed line", "file", metaPath, "line", lineNo, "fields", len(fields))
			stats.Malformed++
			continue
		}

		fileName := strings.TrimSpace(fields[0])
		text := NormalizeTranscript(fields[1])

		audioPath := filepath.Join(p.AudioRoot, fileName)
		if _, err := os.Stat(audioPath); err != nil {
			// Partial datasets routinely reference clips that are not on
			// disk; this is expected, not an error.
			log.Debug("skipping missing audio", "file", metaPath, "line", lineNo, "audio", audioPath)
			stats.MissingAudio++
			continue
		}

		info, err := prober.Probe(audioPath)
		if err != nil {
			log.Error("audio probe failed", "file", metaPath, "line", lineNo, "audio", audioPath, "error", err)
			stats.ProbeFailures++
			continue
		}

		duration := info.Duration()
		if !p.Durations.Accepts(duration) {
			log.Warn("skipping out-of-range duration", "file", metaPath, "line", lineNo, "audio", audioPath, "duration", duration)
			stats.BadDuration++
			continue
		}

		if text == "" {
			log.Warn("skipping empty text", "file", metaPath, "line", lineNo, "audio", audioPath)
			stats.EmptyText++
			continue
		}

		if p.Vocab != nil {
			if cerr := p.Vocab.Check(text); cerr != nil {
				return nil, stats, fmt.Errorf("metadata: %s line %d (%s): %w", metaPath, lineNo, fileName, cerr)
			}
		}

		records = append(records, Record{
			AudioPath: audioPath,
			Text:      text,
			Speaker:   fields[2],
			Emotion:   fields[3],
			Language:  fields[4],
			Duration:  duration,
		})
		stats.Kept++
	}

	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("metadata: read %s: %w", metaPath, err)
	}

	if len(records) == 0 {
		return nil, stats, fmt.Errorf("metadata: %s: %w", metaPath, ErrNoValidRows)
	}

	log.Info("parsed metadata", "file", metaPath, "kept", stats.Kept,
		"malformed", stats.Malformed, "missing_audio", stats.MissingAudio,
		"probe_failures", stats.ProbeFailures, "bad_duration", stats.BadDuration,
		"empty_text", stats.EmptyText)

	return records, stats, nil
}
