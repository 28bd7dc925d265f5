// Package audio provides WAV probing, decoding, and sample-rate conversion
// for training-corpus ingestion. Probing reads only the RIFF chunk headers so
// duration queries stay cheap enough to run over an entire corpus.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Info describes a WAV file without decoding its samples.
type Info struct {
	Frames     int64
	SampleRate int
	Channels   int
	BitDepth   int
}

// Duration returns the clip length in seconds.
func (i Info) Duration() float64 {
	if i.SampleRate <= 0 {
		return 0
	}

	return float64(i.Frames) / float64(i.SampleRate)
}

// ErrNotWAV is returned when the file does not carry a RIFF/WAVE signature.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// ProbeWAV reads the fmt and data chunk headers of a WAV file and returns
// frame count and format. Sample data is never read.
func ProbeWAV(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}
	defer f.Close()

	info, err := probeWAV(f)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}

	return info, nil
}

func probeWAV(r io.ReadSeeker) (Info, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Info{}, fmt.Errorf("read RIFF header: %w", err)
	}

	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, ErrNotWAV
	}

	var info Info
	haveFmt := false
	haveData := false

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return Info{}, fmt.Errorf("read chunk header: %w", err)
		}

		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, fmt.Errorf("fmt chunk too short (%d bytes)", size)
			}

			var body [16]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return Info{}, fmt.Errorf("read fmt chunk: %w", err)
			}

			info.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			info.BitDepth = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true

			if skip := int64(size) - 16; skip > 0 {
				if _, err := r.Seek(padded(skip, size), io.SeekCurrent); err != nil {
					return Info{}, fmt.Errorf("skip fmt remainder: %w", err)
				}
			}
		case "data":
			if !haveFmt {
				return Info{}, errors.New("data chunk before fmt chunk")
			}

			blockAlign := int64(info.Channels) * int64(info.BitDepth) / 8
			if blockAlign <= 0 {
				return Info{}, fmt.Errorf("invalid format: %d channels, %d-bit", info.Channels, info.BitDepth)
			}

			info.Frames = int64(size) / blockAlign
			haveData = true
		default:
			if _, err := r.Seek(padded(int64(size), size), io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}

		if haveFmt && haveData {
			break
		}
	}

	if !haveFmt {
		return Info{}, errors.New("missing fmt chunk")
	}

	if !haveData {
		return Info{}, errors.New("missing data chunk")
	}

	return info, nil
}

// RIFF chunks are word-aligned: odd-sized chunks carry one pad byte.
func padded(skip int64, size uint32) int64 {
	if size%2 == 1 {
		return skip + 1
	}

	return skip
}
