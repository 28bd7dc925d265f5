package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/go-tts-dataprep/internal/metadata"
)

type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Audio    AudioConfig   `mapstructure:"audio"`
	Sampler  SamplerConfig `mapstructure:"sampler"`
	LogLevel string        `mapstructure:"log_level"`
}

type PathsConfig struct {
	Metadata        []string `mapstructure:"metadata"`
	AudioRoots      []string `mapstructure:"audio_roots"`
	VocabPath       string   `mapstructure:"vocab_path"`
	FeatureDir      string   `mapstructure:"feature_dir"`
	DurationSidecar string   `mapstructure:"duration_sidecar"`
	CacheDir        string   `mapstructure:"cache_dir"`
}

type AudioConfig struct {
	TargetSampleRate  int     `mapstructure:"target_sample_rate"`
	HopLength         int     `mapstructure:"hop_length"`
	MinDuration       float64 `mapstructure:"min_duration"`
	MaxDuration       float64 `mapstructure:"max_duration"`
	StrictMinDuration float64 `mapstructure:"strict_min_duration"`
	StrictDurations   bool    `mapstructure:"strict_durations"`
}

// DurationPolicy maps the configured bounds to a clip filter. Strict mode
// uses the inclusive curated lower bound instead of the tolerant one.
func (a AudioConfig) DurationPolicy() metadata.DurationPolicy {
	if a.StrictDurations {
		return metadata.DurationPolicy{Min: a.StrictMinDuration, Max: a.MaxDuration, MinInclusive: true}
	}

	return metadata.DurationPolicy{Min: a.MinDuration, Max: a.MaxDuration}
}

type SamplerConfig struct {
	FramesThreshold int   `mapstructure:"frames_threshold"`
	MaxSamples      int   `mapstructure:"max_samples"`
	Seed            int64 `mapstructure:"seed"`
	DropResidual    bool  `mapstructure:"drop_residual"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Metadata:        nil,
			AudioRoots:      nil,
			VocabPath:       "",
			FeatureDir:      "",
			DurationSidecar: "",
			CacheDir:        "",
		},
		Audio: AudioConfig{
			TargetSampleRate:  24000,
			HopLength:         256,
			MinDuration:       0.3,
			MaxDuration:       30,
			StrictMinDuration: 1,
			StrictDurations:   false,
		},
		Sampler: SamplerConfig{
			FramesThreshold: 3000,
			MaxSamples:      64,
			Seed:            0,
			DropResidual:    false,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.StringSlice("paths-metadata", defaults.Paths.Metadata, "Metadata file paths (repeatable)")
	fs.StringSlice("paths-audio-roots", defaults.Paths.AudioRoots, "Audio root directories, aligned with --paths-metadata")
	fs.String("paths-vocab-path", defaults.Paths.VocabPath, "Vocabulary file path")
	fs.String("paths-feature-dir", defaults.Paths.FeatureDir, "Directory holding precomputed feature stores")
	fs.String("paths-duration-sidecar", defaults.Paths.DurationSidecar, "Duration sidecar JSON for precomputed features")
	fs.String("paths-cache-dir", defaults.Paths.CacheDir, "Probe cache directory (empty keeps the cache in memory)")
	fs.Int("audio-target-sample-rate", defaults.Audio.TargetSampleRate, "Sample rate clips are resampled to")
	fs.Int("audio-hop-length", defaults.Audio.HopLength, "Samples per feature frame")
	fs.Float64("audio-min-duration", defaults.Audio.MinDuration, "Exclusive minimum clip duration in seconds")
	fs.Float64("audio-max-duration", defaults.Audio.MaxDuration, "Inclusive maximum clip duration in seconds")
	fs.Float64("audio-strict-min-duration", defaults.Audio.StrictMinDuration, "Inclusive minimum clip duration in strict mode")
	fs.Bool("audio-strict-durations", defaults.Audio.StrictDurations, "Use the strict inclusive lower duration bound")
	fs.Int("sampler-frames-threshold", defaults.Sampler.FramesThreshold, "Frame budget per batch")
	fs.Int("sampler-max-samples", defaults.Sampler.MaxSamples, "Row cap per batch (0 = unlimited)")
	fs.Int64("sampler-seed", defaults.Sampler.Seed, "Epoch shuffle seed")
	fs.Bool("sampler-drop-residual", defaults.Sampler.DropResidual, "Drop the final underfull batch")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("DATAPREP")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("paths.cache_dir", "DATAPREP_CACHE_DIR", "DATAPREP_CACHE"); err != nil {
		return Config{}, fmt.Errorf("bind cache env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("dataprep")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.metadata", c.Paths.Metadata)
	v.SetDefault("paths.audio_roots", c.Paths.AudioRoots)
	v.SetDefault("paths.vocab_path", c.Paths.VocabPath)
	v.SetDefault("paths.feature_dir", c.Paths.FeatureDir)
	v.SetDefault("paths.duration_sidecar", c.Paths.DurationSidecar)
	v.SetDefault("paths.cache_dir", c.Paths.CacheDir)
	v.SetDefault("audio.target_sample_rate", c.Audio.TargetSampleRate)
	v.SetDefault("audio.hop_length", c.Audio.HopLength)
	v.SetDefault("audio.min_duration", c.Audio.MinDuration)
	v.SetDefault("audio.max_duration", c.Audio.MaxDuration)
	v.SetDefault("audio.strict_min_duration", c.Audio.StrictMinDuration)
	v.SetDefault("audio.strict_durations", c.Audio.StrictDurations)
	v.SetDefault("sampler.frames_threshold", c.Sampler.FramesThreshold)
	v.SetDefault("sampler.max_samples", c.Sampler.MaxSamples)
	v.SetDefault("sampler.seed", c.Sampler.Seed)
	v.SetDefault("sampler.drop_residual", c.Sampler.DropResidual)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.metadata", "paths-metadata")
	v.RegisterAlias("paths.audio_roots", "paths-audio-roots")
	v.RegisterAlias("paths.vocab_path", "paths-vocab-path")
	v.RegisterAlias("paths.feature_dir", "paths-feature-dir")
	v.RegisterAlias("paths.duration_sidecar", "paths-duration-sidecar")
	v.RegisterAlias("paths.cache_dir", "paths-cache-dir")
	v.RegisterAlias("audio.target_sample_rate", "audio-target-sample-rate")
	v.RegisterAlias("audio.hop_length", "audio-hop-length")
	v.RegisterAlias("audio.min_duration", "audio-min-duration")
	v.RegisterAlias("audio.max_duration", "audio-max-duration")
	v.RegisterAlias("audio.strict_min_duration", "audio-strict-min-duration")
	v.RegisterAlias("audio.strict_durations", "audio-strict-durations")
	v.RegisterAlias("sampler.frames_threshold", "sampler-frames-threshold")
	v.RegisterAlias("sampler.max_samples", "sampler-max-samples")
	v.RegisterAlias("sampler.seed", "sampler-seed")
	v.RegisterAlias("sampler.drop_residual", "sampler-drop-residual")
	v.RegisterAlias("log_level", "log-level")
}
