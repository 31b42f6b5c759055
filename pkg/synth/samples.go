package synth

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/hiway/tonal/pkg/pitch"
)

const (
	// Gain scales a chord volume of 1.0 to the amplitude of its fundamental.
	Gain = 8192.0
	// Harmonics is the number of overtones summed per pitch, fundamental included.
	Harmonics = 4
)

// ErrUnknownMode is returned when a mode name cannot be parsed.
var ErrUnknownMode = errors.New("unknown sample mode")

// Mode selects how harmonic and pitch contributions are accumulated.
type Mode int

const (
	// ModeWrap adds with 16-bit two's complement wraparound. Loud chords distort
	// by flipping sign rather than clipping.
	ModeWrap Mode = iota
	// ModeSaturate clamps every partial sum to the int16 range.
	ModeSaturate
)

func (m Mode) String() string {
	switch m {
	case ModeWrap:
		return "wrap"
	case ModeSaturate:
		return "saturate"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "wrap" or "saturate". The empty string is ModeWrap.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap":
		return ModeWrap, nil
	case "saturate":
		return ModeSaturate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// UnmarshalText lets modes be decoded from config files.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Source is a finite stream of samples that knows how many remain.
type Source interface {
	// Next returns the next sample, or false once the stream is exhausted.
	Next() (int16, bool)
	// Len returns the number of samples Next will still produce.
	Len() int
}

// Samples is a finite stream of mono PCM samples for a group of pitches.
//
// The pitches are copied when the stream is created, so the caller may keep
// editing its own slice while the stream is consumed. A Samples value is not
// safe for concurrent use; create one stream per consumer.
type Samples struct {
	current uint32
	max     uint32
	pitches []pitch.Pitch
	freqs   []float64
	rate    float64
	volume  float64
	mode    Mode
}

// Option configures a Samples stream.
type Option func(*Samples)

// WithMode sets the accumulation mode. The default is ModeWrap.
func WithMode(m Mode) Option {
	return func(s *Samples) {
		s.mode = m
	}
}

// New returns a stream of count samples at rate samples per second. volume is
// the amplitude of each pitch's fundamental; successive harmonics get half of
// the previous one.
func New(count uint32, pitches []pitch.Pitch, rate, volume float64, opts ...Option) *Samples {
	s := &Samples{
		max:     count,
		pitches: slices.Clone(pitches),
		freqs:   make([]float64, len(pitches)),
		rate:    rate,
		volume:  volume,
	}
	for i, p := range s.pitches {
		s.freqs[i] = p.Freq()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next sample, or false once all samples were produced.
func (s *Samples) Next() (int16, bool) {
	if s.current >= s.max {
		return 0, false
	}
	v := s.sample(s.current)
	s.current++
	return v, true
}

// Len returns the number of samples left in the stream.
func (s *Samples) Len() int {
	return int(s.max - s.current)
}

// Total returns the number of samples the stream was created with.
func (s *Samples) Total() int {
	return int(s.max)
}

// Rate returns the sample rate in samples per second.
func (s *Samples) Rate() float64 {
	return s.rate
}

// Mode returns the accumulation mode of the stream.
func (s *Samples) Mode() Mode {
	return s.mode
}

// Pitches returns the pitches the stream was created with.
func (s *Samples) Pitches() []pitch.Pitch {
	return slices.Clone(s.pitches)
}

// All returns an iterator over the remaining samples. Breaking out of the loop
// leaves the stream positioned after the last sample yielded.
func (s *Samples) All() iter.Seq[int16] {
	return func(yield func(int16) bool) {
		for {
			v, ok := s.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Fill writes up to len(dst) samples into dst and returns how many were written.
func (s *Samples) Fill(dst []int16) int {
	return fill(s, dst)
}

// Collect drains the stream into a new slice.
func (s *Samples) Collect() []int16 {
	out := make([]int16, s.Len())
	return out[:s.Fill(out)]
}

func fill(src Source, dst []int16) int {
	for i := range dst {
		v, ok := src.Next()
		if !ok {
			return i
		}
		dst[i] = v
	}
	return len(dst)
}

// sample computes sample i. Every harmonic is converted to int16 on its own and
// then accumulated at 16 bits, first per pitch, then across pitches.
func (s *Samples) sample(i uint32) int16 {
	t := float64(i) / s.rate

	var sum int16
	for _, f := range s.freqs {
		var sub int16
		for h := 1; h <= Harmonics; h++ {
			hf := f * float64(h)
			amp := s.volume / math.Pow(2, float64(h-1))
			sub = s.add(sub, toInt16(math.Sin(t*2*math.Pi*hf)*amp))
		}
		sum = s.add(sum, sub)
	}
	return sum
}

func (s *Samples) add(a, b int16) int16 {
	if s.mode == ModeSaturate {
		return clamp(int32(a) + int32(b))
	}
	return a + b
}

// toInt16 truncates toward zero, saturating at the int16 bounds. NaN becomes 0.
func toInt16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

func clamp(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
