// Package featstore reads and writes precomputed feature matrices in the
// safetensors container layout: an 8-byte little-endian header length, a
// JSON header mapping tensor names to dtype/shape/offsets, then the raw
// payload. Only F32 matrices are supported; entries are named feat.%06d so
// a store doubles as an index-addressable dataset.
package featstore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/example/go-tts-dataprep/internal/tensor"
)

const dtypeF32 = "F32"

// EntryName returns the canonical tensor name for row index i.
func EntryName(i int) string {
	return fmt.Sprintf("feat.%06d", i)
}

type headerEntry struct {
	DType   string  `json:"dtype"`
	Shape   []int64 `json:"shape"`
	Offsets [2]int  `json:"data_offsets"`
}

// Store is a read-only feature container. Shape lookups never touch the
// payload, so frame-length queries stay cheap.
type Store struct {
	raw     []byte
	entries map[string]headerEntry
	size    int
}

// Open reads a feature store from disk.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("featstore: read %s: %w", path, err)
	}

	s, err := openBytes(data)
	if err != nil {
		return nil, fmt.Errorf("featstore: %s: %w", path, err)
	}

	return s, nil
}

func openBytes(data []byte) (*Store, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("file too short (%d bytes)", len(data))
	}

	headerLen := binary.LittleEndian.Uint64(data[:8])

	headerEnd := 8 + int(headerLen)
	if headerEnd > len(data) {
		return nil, fmt.Errorf("header length %d exceeds file size %d", headerLen, len(data))
	}

	var header map[string]headerEntry
	if err := json.Unmarshal(data[8:headerEnd], &header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	delete(header, "__metadata__")

	entries := make(map[string]headerEntry, len(header))

	for name, entry := range header {
		if entry.DType != dtypeF32 {
			return nil, fmt.Errorf("tensor %q has unsupported dtype %q (only F32 features)", name, entry.DType)
		}

		elems, err := shapeElementCount(entry.Shape)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", name, err)
		}

		start := headerEnd + entry.Offsets[0]
		end := headerEnd + entry.Offsets[1]

		if entry.Offsets[0] < 0 || end < start || end > len(data) {
			return nil, fmt.Errorf("tensor %q data [%d:%d] exceeds file size %d", name, start, end, len(data))
		}

		if end-start < int(elems)*4 {
			return nil, fmt.Errorf("tensor %q needs %d bytes but data has %d", name, elems*4, end-start)
		}

		entry.Offsets = [2]int{start, end}
		entries[name] = entry
	}

	if len(entries) == 0 {
		return nil, errors.New("no tensors found")
	}

	// Entries must form a dense feat.000000..feat.N-1 index space.
	for i := range len(entries) {
		if _, ok := entries[EntryName(i)]; !ok {
			return nil, fmt.Errorf("missing entry %s in store of %d tensors", EntryName(i), len(entries))
		}
	}

	return &Store{raw: data, entries: entries, size: len(entries)}, nil
}

// Len returns the number of feature rows.
func (s *Store) Len() int {
	return s.size
}

// FeatureShape returns the shape of row i without decoding the payload.
func (s *Store) FeatureShape(i int) ([]int64, error) {
	entry, err := s.entry(i)
	if err != nil {
		return nil, err
	}

	return append([]int64(nil), entry.Shape...), nil
}

// Feature decodes and returns row i.
func (s *Store) Feature(i int) (*tensor.Tensor, error) {
	entry, err := s.entry(i)
	if err != nil {
		return nil, err
	}

	raw := s.raw[entry.Offsets[0]:entry.Offsets[1]]

	elems, err := shapeElementCount(entry.Shape)
	if err != nil {
		return nil, fmt.Errorf("featstore: %s: %w", EntryName(i), err)
	}

	data := make([]float32, elems)
	for j := range data {
		data[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:]))
	}

	t, err := tensor.New(data, entry.Shape)
	if err != nil {
		return nil, fmt.Errorf("featstore: %s: %w", EntryName(i), err)
	}

	return t, nil
}

func (s *Store) entry(i int) (headerEntry, error) {
	if i < 0 || i >= s.size {
		return headerEntry{}, fmt.Errorf("featstore: index %d out of range [0, %d)", i, s.size)
	}

	return s.entries[EntryName(i)], nil
}

// Close releases the payload.
func (s *Store) Close() {
	s.raw = nil
	s.entries = nil
	s.size = 0
}

// Write serializes features into a store file, naming row i feat.%06d.
func Write(path string, features []*tensor.Tensor) error {
	if len(features) == 0 {
		return errors.New("featstore: no features to write")
	}

	header := make(map[string]headerEntry, len(features))

	var raw []byte

	names := make([]string, len(features))
	for i := range features {
		names[i] = EntryName(i)
	}

	sort.Strings(names)

	for _, name := range names {
		var idx int
		if _, err := fmt.Sscanf(name, "feat.%d", &idx); err != nil {
			return fmt.Errorf("featstore: bad entry name %q: %w", name, err)
		}

		t := features[idx]
		if t == nil {
			return fmt.Errorf("featstore: feature %d is nil", idx)
		}

		start := len(raw)

		raw = append(raw, make([]byte, t.ElemCount()*4)...)
		for j, v := range t.RawData() {
			binary.LittleEndian.PutUint32(raw[start+j*4:], math.Float32bits(v))
		}

		header[name] = headerEntry{
			DType:   dtypeF32,
			Shape:   t.Shape(),
			Offsets: [2]int{start, len(raw)},
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("featstore: encode header: %w", err)
	}

	out := make([]byte, 0, 8+len(headerJSON)+len(raw))
	lenPrefix := make([]byte, 8)
	binary.LittleEndian.PutUint64(lenPrefix, uint64(len(headerJSON)))
	out = append(out, lenPrefix...)
	out = append(out, headerJSON...)
	out = append(out, raw...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("featstore: write %s: %w", path, err)
	}

	return nil
}

func shapeElementCount(shape []int64) (int64, error) {
	total := int64(1)

	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension %d", d)
		}

		if d == 0 {
			return 0, nil
		}

		if total > math.MaxInt64/d {
			return 0, fmt.Errorf("shape %v overflows element count", shape)
		}

		total *= d
	}

	return total, nil
}
