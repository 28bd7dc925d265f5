package config

import (
	"fmt"
	"strings"
)

const (
	SourceRawAudio    = "raw-audio"
	SourcePrecomputed = "precomputed"
)

// NormalizeSource canonicalizes a dataset source kind. Empty input selects
// raw audio ingestion.
func NormalizeSource(raw string) (string, error) {
	source := strings.ToLower(strings.TrimSpace(raw))
	if source == "" {
		source = SourceRawAudio
	}
	switch source {
	case SourceRawAudio, SourcePrecomputed:
		return source, nil
	case "raw":
		return SourceRawAudio, nil
	case "features":
		return SourcePrecomputed, nil
	default:
		return "", fmt.Errorf(
			"invalid dataset source %q (expected %s|%s|raw|features)",
			raw,
			SourceRawAudio,
			SourcePrecomputed,
		)
	}
}
