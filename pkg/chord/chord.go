package chord

import (
	"math"
	"slices"
	"time"

	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/pitch"
	"github.com/hiway/tonal/pkg/synth"
)

// Chord is a group of pitches sounded together with a shared length and volume.
// A single note is a chord with one pitch.
type Chord struct {
	pitches []pitch.Pitch
	length  length.Length
	volume  float64
}

// New creates a chord. Nothing is validated: the pitch list may be empty or
// hold duplicates, and volumes above 1.0 are allowed (they may overflow).
func New(pitches []pitch.Pitch, l length.Length, volume float64) *Chord {
	return &Chord{
		pitches: pitches,
		length:  l,
		volume:  volume,
	}
}

// NewMajor creates a major triad: the root, a major third and a perfect fifth.
func NewMajor(root pitch.Pitch, l length.Length, volume float64) *Chord {
	return New([]pitch.Pitch{root, root.Transpose(4), root.Transpose(7)}, l, volume)
}

// Pitches returns a copy of the chord's pitches.
func (c *Chord) Pitches() []pitch.Pitch {
	return slices.Clone(c.pitches)
}

// MutablePitches gives in-place access to the chord's pitches. Streams already
// returned by Samples are not affected by edits.
func (c *Chord) MutablePitches() *[]pitch.Pitch {
	return &c.pitches
}

// Length returns the chord's note length.
func (c *Chord) Length() length.Length {
	return c.length
}

// Volume returns the chord's volume, where 1.0 is full scale for one pitch.
func (c *Chord) Volume() float64 {
	return c.volume
}

// SampleCount returns how many samples the chord lasts at the given tempo and rate.
// The duration is rounded to whole nanoseconds before it is scaled by rate.
// Tempos that give a negative or non-finite duration yield 0; counts too large
// for a uint32 saturate.
func (c *Chord) SampleCount(bpm float64, rate uint32) uint32 {
	s := c.length.Seconds(bpm)
	switch {
	case rate == 0 || !(s >= 0) || math.IsInf(s, 1):
		return 0
	case s*float64(time.Second) > math.MaxInt64:
		return math.MaxUint32
	}
	n := math.Round(c.length.Duration(bpm).Seconds() * float64(rate))
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// Samples returns a new stream of PCM samples for the chord. Every call starts
// from the beginning; the chord itself is not changed.
func (c *Chord) Samples(bpm float64, rate uint32, opts ...synth.Option) *synth.Samples {
	return synth.New(c.SampleCount(bpm, rate), c.pitches, float64(rate), c.volume*synth.Gain, opts...)
}
