package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/example/go-tts-dataprep/internal/audio"
	"github.com/example/go-tts-dataprep/internal/config"
	"github.com/example/go-tts-dataprep/internal/metadata"
	"github.com/example/go-tts-dataprep/internal/probecache"
	"github.com/example/go-tts-dataprep/internal/vocab"
)

// openProber wraps the WAV header prober in the persistent probe cache.
// An empty cache dir keeps the cache in memory for the process lifetime.
func openProber(cfg config.Config) (audio.Prober, func(), error) {
	cache, err := probecache.Open(audio.WAVProber(), probecache.Options{
		Dir:      cfg.Paths.CacheDir,
		InMemory: cfg.Paths.CacheDir == "",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open probe cache: %w", err)
	}

	return cache, func() { _ = cache.Close() }, nil
}

// audioRootFor resolves the audio root for metadata file i: the aligned
// entry when one exists, a single shared root, or the metadata file's own
// directory.
func audioRootFor(cfg config.Config, i int) string {
	roots := cfg.Paths.AudioRoots
	switch {
	case i < len(roots):
		return roots[i]
	case len(roots) == 1:
		return roots[0]
	default:
		return filepath.Dir(cfg.Paths.Metadata[i])
	}
}

// fileIngest is the parse outcome of one metadata file.
type fileIngest struct {
	Path    string
	Records []metadata.Record
	Stats   metadata.Stats
}

// parseAll runs ingestion over every configured metadata file. A vocabulary
// coverage failure in any file aborts the whole run.
func parseAll(ctx context.Context, cfg config.Config, vmap *vocab.Map, prober audio.Prober, logger *slog.Logger) ([]fileIngest, error) {
	if len(cfg.Paths.Metadata) == 0 {
		return nil, fmt.Errorf("no metadata files configured (--paths-metadata)")
	}

	out := make([]fileIngest, 0, len(cfg.Paths.Metadata))
	for i, metaPath := range cfg.Paths.Metadata {
		parser := &metadata.Parser{
			AudioRoot: audioRootFor(cfg, i),
			Durations: cfg.Audio.DurationPolicy(),
			Prober:    prober,
			Vocab:     vmap,
			Logger:    logger,
		}

		records, stats, err := parser.Parse(ctx, metaPath)
		if err != nil {
			return nil, err
		}

		out = append(out, fileIngest{Path: metaPath, Records: records, Stats: stats})
	}

	return out, nil
}

// loadVocab loads the configured vocabulary, or nil when none is set.
func loadVocab(cfg config.Config) (*vocab.Map, error) {
	if cfg.Paths.VocabPath == "" {
		return nil, nil
	}

	return vocab.Load(cfg.Paths.VocabPath)
}
