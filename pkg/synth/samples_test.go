package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiway/tonal/pkg/pitch"
)

// reference computes sample i with a wide accumulator and narrows at the end,
// which is equivalent to wrapping at every step.
func reference(i int, pitches []pitch.Pitch, rate, volume float64) int16 {
	t := float64(i) / rate
	var sum int64
	for _, p := range pitches {
		for h := 1; h <= 4; h++ {
			c := math.Trunc(math.Sin(t*2*math.Pi*(p.Freq()*float64(h))) * (volume / math.Pow(2, float64(h-1))))
			c = math.Max(math.MinInt16, math.Min(math.MaxInt16, c))
			sum += int64(c)
		}
	}
	return int16(sum)
}

func TestLengthIsExact(t *testing.T) {
	s := New(100, []pitch.Pitch{0}, 8000, 4096)
	assert.Equal(t, 100, s.Len())
	assert.Equal(t, 100, s.Total())

	n := 0
	for range s.All() {
		n++
		assert.Equal(t, 100-n, s.Len())
	}
	assert.Equal(t, 100, n)

	_, ok := s.Next()
	assert.False(t, ok)
	_, ok = s.Next()
	assert.False(t, ok, "exhausted stream stays exhausted")
	assert.Equal(t, 0, s.Len())
}

func TestZeroCountIsEmpty(t *testing.T) {
	s := New(0, []pitch.Pitch{0}, 44100, 4096)
	_, ok := s.Next()
	assert.False(t, ok)
	assert.Empty(t, s.Collect())
}

func TestNoPitchesIsSilence(t *testing.T) {
	got := New(500, nil, 44100, 8192).Collect()
	require.Len(t, got, 500)
	for _, v := range got {
		assert.Zero(t, v)
	}
}

func TestMatchesReference(t *testing.T) {
	tests := []struct {
		name    string
		pitches []pitch.Pitch
		rate    float64
		volume  float64
	}{
		{"a4", []pitch.Pitch{0}, 8000, 0.5 * Gain},
		{"c major", []pitch.Pitch{-9, -5, -2}, 44100, 0.3 * Gain},
		{"low", []pitch.Pitch{-40}, 22050, Gain},
		{"duplicates", []pitch.Pitch{3, 3}, 48000, 0.8 * Gain},
		{"loud wraps", []pitch.Pitch{0, 4, 7}, 44100, 3 * Gain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(1000, tt.pitches, tt.rate, tt.volume).Collect()
			require.Len(t, got, 1000)
			for i, v := range got {
				require.Equal(t, reference(i, tt.pitches, tt.rate, tt.volume), v, "sample %d", i)
			}
		})
	}
}

func TestTruncatesTowardZero(t *testing.T) {
	// Four samples per cycle: sample 1 sits on the fundamental's peak, the third
	// harmonic's trough, and zero crossings of the other two.
	s := New(2, []pitch.Pitch{pitch.MustFromFreq(440)}, 4*440, 1001)
	first, _ := s.Next()
	second, _ := s.Next()
	assert.Equal(t, int16(0), first)
	assert.Equal(t, int16(1001-250), second)
}

func TestWrapAndSaturateDiverge(t *testing.T) {
	pitches := []pitch.Pitch{0, 4, 7}
	wrapped := New(2000, pitches, 44100, 4*Gain).Collect()
	saturated := New(2000, pitches, 44100, 4*Gain, WithMode(ModeSaturate)).Collect()

	differ := 0
	for i := range wrapped {
		if wrapped[i] != saturated[i] {
			differ++
		}
	}
	assert.Positive(t, differ)
}

func TestSaturateClampsEachStep(t *testing.T) {
	pitches := []pitch.Pitch{0, 0, 0}
	s := New(200, pitches, 8000, 2*Gain, WithMode(ModeSaturate))
	assert.Equal(t, ModeSaturate, s.Mode())
	for i, v := range s.Collect() {
		tm := float64(i) / 8000
		var sub int32
		for h := 1; h <= 4; h++ {
			c := toInt16(math.Sin(tm*2*math.Pi*(440*float64(h))) * (2 * Gain / math.Pow(2, float64(h-1))))
			sub = int32(clamp(sub + int32(c)))
		}
		var sum int32
		for range pitches {
			sum = int32(clamp(sum + sub))
		}
		require.Equal(t, int16(sum), v, "sample %d", i)
	}
}

func TestQuietChordsAgreeAcrossModes(t *testing.T) {
	pitches := []pitch.Pitch{-9, -5, -2}
	wrapped := New(3000, pitches, 44100, 0.25*Gain).Collect()
	saturated := New(3000, pitches, 44100, 0.25*Gain, WithMode(ModeSaturate)).Collect()
	assert.Equal(t, wrapped, saturated)
}

func TestPitchesAreSnapshotted(t *testing.T) {
	pitches := []pitch.Pitch{0, 4}
	s := New(10, pitches, 8000, Gain)
	pitches[0] = 12
	assert.Equal(t, []pitch.Pitch{0, 4}, s.Pitches())

	want := New(10, []pitch.Pitch{0, 4}, 8000, Gain).Collect()
	assert.Equal(t, want, s.Collect())
}

func TestFillAndBreak(t *testing.T) {
	s := New(10, []pitch.Pitch{0}, 8000, Gain)
	all := New(10, []pitch.Pitch{0}, 8000, Gain).Collect()

	buf := make([]int16, 4)
	require.Equal(t, 4, s.Fill(buf))
	assert.Equal(t, all[:4], buf)

	for v := range s.All() {
		assert.Equal(t, all[4], v)
		break
	}
	assert.Equal(t, 5, s.Len())

	buf = make([]int16, 8)
	require.Equal(t, 5, s.Fill(buf))
	assert.Equal(t, all[5:], buf[:5])
}

func TestToInt16(t *testing.T) {
	assert.Equal(t, int16(0), toInt16(math.NaN()))
	assert.Equal(t, int16(1), toInt16(1.9))
	assert.Equal(t, int16(-1), toInt16(-1.9))
	assert.Equal(t, int16(math.MaxInt16), toInt16(1e9))
	assert.Equal(t, int16(math.MinInt16), toInt16(-1e9))
	assert.Equal(t, int16(math.MaxInt16), toInt16(math.Inf(1)))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeWrap, "wrap": ModeWrap, "Saturate": ModeSaturate} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("clip")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, "saturate", ModeSaturate.String())
}
