// Package probecache persists audio probe results in a BadgerDB store so
// that re-validating a large corpus does not re-read every file header.
// Entries are keyed by path, file size, and modification time; touching a
// file invalidates its entry automatically.
package probecache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/example/go-tts-dataprep/internal/audio"
)

// Cache wraps a Prober with a persistent result store.
type Cache struct {
	db   *badger.DB
	next audio.Prober
}

// Options configures a Cache.
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for tests.
	InMemory bool
}

// Open creates a probe cache in front of next.
func Open(next audio.Prober, opts Options) (*Cache, error) {
	if next == nil {
		return nil, errors.New("probecache: nil prober")
	}

	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("probecache: Options.Dir is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	dbOpts = dbOpts.WithLogger(quietLogger{})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("probecache: open badger at %s: %w", opts.Dir, err)
	}

	return &Cache{db: db, next: next}, nil
}

// Probe returns the cached Info for path when the file is unchanged since
// the entry was written, otherwise probes and stores the result.
func (c *Cache) Probe(path string) (audio.Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return audio.Info{}, fmt.Errorf("probecache: stat %s: %w", path, err)
	}

	key := cacheKey(path, fi.Size(), fi.ModTime().UnixNano())

	var cached []byte

	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		cached, err = item.ValueCopy(nil)

		return err
	})

	switch {
	case err == nil:
		info, decErr := decodeInfo(cached)
		if decErr == nil {
			return info, nil
		}
		// Corrupt entry: fall through and re-probe.
		slog.Warn("probecache: dropping corrupt entry", "path", path, "error", decErr)
	case errors.Is(err, badger.ErrKeyNotFound):
		// Miss.
	default:
		return audio.Info{}, fmt.Errorf("probecache: read entry for %s: %w", path, err)
	}

	info, err := c.next.Probe(path)
	if err != nil {
		return audio.Info{}, err
	}

	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encodeInfo(info))
	}); err != nil {
		// A write failure degrades to uncached probing, it does not fail
		// the probe itself.
		slog.Warn("probecache: store entry failed", "path", path, "error", err)
	}

	return info, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(path string, size, mtimeNanos int64) []byte {
	return fmt.Appendf(nil, "%s|%d|%d", path, size, mtimeNanos)
}

const infoEncodedLen = 8 + 8 + 8 + 8

func encodeInfo(info audio.Info) []byte {
	buf := make([]byte, infoEncodedLen)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(info.Frames))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(info.SampleRate))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(info.Channels))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(info.BitDepth))

	return buf
}

func decodeInfo(buf []byte) (audio.Info, error) {
	if len(buf) != infoEncodedLen {
		return audio.Info{}, fmt.Errorf("entry has %d bytes, want %d", len(buf), infoEncodedLen)
	}

	return audio.Info{
		Frames:     int64(binary.LittleEndian.Uint64(buf[0:8])),
		SampleRate: int(binary.LittleEndian.Uint64(buf[8:16])),
		Channels:   int(binary.LittleEndian.Uint64(buf[16:24])),
		BitDepth:   int(binary.LittleEndian.Uint64(buf[24:32])),
	}, nil
}

// quietLogger suppresses badger's info and debug chatter, keeping errors
// and warnings on the default slog logger.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { slog.Error(fmt.Sprintf("badger: "+f, v...)) }
func (quietLogger) Warningf(f string, v ...interface{}) { slog.Warn(fmt.Sprintf("badger: "+f, v...)) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
