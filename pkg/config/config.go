package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/hiway/tonal/pkg/chord"
	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/pitch"
	"github.com/hiway/tonal/pkg/synth"
)

const (
	// FileName is the relative path of the config file in each search location.
	FileName = "tonal/tonal.toml"

	DefaultBPM        = 120.0
	DefaultSampleRate = 44100
	DefaultVolume     = 0.5
)

// ChordConfig describes one chord of the song.
type ChordConfig struct {
	Pitches []string      `toml:"pitches"` // Scientific pitch names, e.g. "C#4"
	Major   string        `toml:"major"`   // Root of a major triad, instead of Pitches
	Length  length.Length `toml:"length"`
	Volume  *float64      `toml:"volume"` // Falls back to Config.Volume
}

// Validate checks that the chord can be built.
func (c *ChordConfig) Validate() error {
	if !c.Length.Valid() {
		return fmt.Errorf("invalid length %d", int(c.Length))
	}
	if c.Major != "" && len(c.Pitches) > 0 {
		return errors.New("pitches and major are mutually exclusive")
	}
	if c.Major != "" {
		if _, err := pitch.ParsePitch(c.Major); err != nil {
			return fmt.Errorf("invalid major root: %w", err)
		}
	}
	for _, s := range c.Pitches {
		if _, err := pitch.ParsePitch(s); err != nil {
			return fmt.Errorf("invalid pitch: %w", err)
		}
	}
	return nil
}

// Chord builds the chord, using volume when the config does not set one.
func (c *ChordConfig) Chord(volume float64) (*chord.Chord, error) {
	if c.Volume != nil {
		volume = *c.Volume
	}
	if c.Major != "" {
		root, err := pitch.ParsePitch(c.Major)
		if err != nil {
			return nil, err
		}
		return chord.NewMajor(root, c.Length, volume), nil
	}
	pitches := make([]pitch.Pitch, 0, len(c.Pitches))
	for _, s := range c.Pitches {
		p, err := pitch.ParsePitch(s)
		if err != nil {
			return nil, err
		}
		pitches = append(pitches, p)
	}
	return chord.New(pitches, c.Length, volume), nil
}

// Config holds the complete tonal configuration.
type Config struct {
	BPM        float64       `toml:"bpm"`
	SampleRate uint32        `toml:"sample_rate"`
	Volume     float64       `toml:"volume"`
	Mode       synth.Mode    `toml:"mode"`
	Chords     []ChordConfig `toml:"chords"`
}

// Default returns a configuration with the default tempo, rate and volume and
// an empty song.
func Default() *Config {
	return &Config{
		BPM:        DefaultBPM,
		SampleRate: DefaultSampleRate,
		Volume:     DefaultVolume,
		Mode:       synth.ModeWrap,
	}
}

// Validate checks the playback settings and every chord.
func (c *Config) Validate() error {
	if !(c.BPM > 0) {
		return fmt.Errorf("bpm must be positive, got %v", c.BPM)
	}
	if c.SampleRate == 0 {
		return errors.New("sample_rate must be positive")
	}
	if c.Mode != synth.ModeWrap && c.Mode != synth.ModeSaturate {
		return fmt.Errorf("unknown mode %v", c.Mode)
	}
	for i := range c.Chords {
		if err := c.Chords[i].Validate(); err != nil {
			return fmt.Errorf("invalid chord %d: %w", i+1, err)
		}
	}
	return nil
}

// Song builds the configured chords in order.
func (c *Config) Song() ([]*chord.Chord, error) {
	song := make([]*chord.Chord, 0, len(c.Chords))
	for i := range c.Chords {
		ch, err := c.Chords[i].Chord(c.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to build chord %d: %w", i+1, err)
		}
		song = append(song, ch)
	}
	return song, nil
}

// SampleOptions returns the stream options implied by the config.
func (c *Config) SampleOptions() []synth.Option {
	return []synth.Option{synth.WithMode(c.Mode)}
}

// Decode parses TOML data on top of cfg. Keys missing from data keep their value.
func Decode(data string, cfg *Config) error {
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	return nil
}

// LoadConfig reads and validates configuration from a TOML file.
func LoadConfig(path string, log zerolog.Logger) (*Config, error) {
	log.Debug().Str("path", path).Msg("Loading configuration file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := Decode(string(data), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Float64("bpm", cfg.BPM).
		Uint32("sample_rate", cfg.SampleRate).
		Int("chords", len(cfg.Chords)).
		Msg("Configuration loaded and validated successfully")
	return cfg, nil
}

// SearchPaths lists the config files to try, lowest priority first: the
// system-wide file, the XDG user file, then the working directory.
func SearchPaths() []string {
	paths := []string{filepath.Join("/usr/local/etc", FileName)}
	if p, err := xdg.SearchConfigFile(FileName); err == nil {
		paths = append(paths, p)
	}
	return append(paths, filepath.Base(FileName))
}

// Load merges every existing file in paths over the defaults. Later files
// override earlier ones. Missing files are skipped.
func Load(paths []string, log zerolog.Logger) (*Config, error) {
	cfg := Default()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
