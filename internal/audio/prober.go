package audio

// Prober resolves a clip's format and frame count without decoding samples.
type Prober interface {
	Probe(path string) (Info, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(path string) (Info, error)

func (f ProberFunc) Probe(path string) (Info, error) {
	return f(path)
}

// WAVProber returns the default header-walking WAV prober.
func WAVProber() Prober {
	return ProberFunc(ProbeWAV)
}
