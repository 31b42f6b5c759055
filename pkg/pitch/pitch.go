package pitch

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReferenceFreq is the frequency of A4, the pitch with offset 0.
const ReferenceFreq = 440.0

var (
	// ErrNonPositiveFrequency is returned when a frequency is not greater than 0.
	ErrNonPositiveFrequency = errors.New("frequency must be greater than 0")
	// ErrUnknownName is returned when a pitch name cannot be parsed.
	ErrUnknownName = errors.New("unknown pitch name")
)

// Name is the alphabetic name of a pitch class, counted in semitones from C.
type Name int

const (
	C Name = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var names = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// String returns the sharp spelling of the name, e.g. "F#".
func (n Name) String() string {
	if n < C || n > B {
		return "Name(" + strconv.Itoa(int(n)) + ")"
	}
	return names[n]
}

// Pitch is a number of semitones above (or below, if negative) A4.
// The zero value is A4. Arithmetic on pitches is arithmetic on semitones.
type Pitch int

// New creates the pitch with the given name in the given octave.
// Octave 4 is the one containing A4; C4 is middle C.
func New(name Name, octave int) Pitch {
	return Pitch((octave-4)*12 + int(name) - 9)
}

// FromFreq returns the pitch nearest to freq in hertz.
//
// Frequencies that fall between semitones are rounded to the nearest one, so a
// slightly detuned input still maps to the expected pitch.
func FromFreq(freq float64) (Pitch, error) {
	if !(freq > 0) {
		return 0, fmt.Errorf("%w: got %v", ErrNonPositiveFrequency, freq)
	}
	return Pitch(math.Round(12 * math.Log2(freq/ReferenceFreq))), nil
}

// MustFromFreq is like FromFreq but panics if freq is not greater than 0.
func MustFromFreq(freq float64) Pitch {
	p, err := FromFreq(freq)
	if err != nil {
		panic(err)
	}
	return p
}

// semitoneRatio is the frequency ratio between two adjacent pitches.
var semitoneRatio = math.Pow(2, 1.0/12)

// Freq returns the equal-temperament frequency of p in hertz.
func (p Pitch) Freq() float64 {
	return ReferenceFreq * math.Pow(semitoneRatio, float64(p))
}

// Transpose returns p moved by n semitones.
func (p Pitch) Transpose(n int) Pitch {
	return p + Pitch(n)
}

// fromC0 is the offset of p counted from C0 instead of A4.
func (p Pitch) fromC0() int {
	return int(p) + 9 + 4*12
}

// Name returns the pitch class of p.
func (p Pitch) Name() Name {
	s := p.fromC0() % 12
	if s < 0 {
		s += 12
	}
	return Name(s)
}

// Octave returns the octave number of p, using the convention that C4 is middle C.
func (p Pitch) Octave() int {
	s := p.fromC0()
	o := s / 12
	if s%12 < 0 {
		o--
	}
	return o
}

// String formats p in scientific pitch notation, e.g. "A4" or "C#-1".
func (p Pitch) String() string {
	return p.Name().String() + strconv.Itoa(p.Octave())
}

// ParseName parses a pitch class such as "C", "c#", "Db" or "Bb".
func ParseName(s string) (Name, error) {
	base, shift, err := parseClass(s)
	if err != nil {
		return 0, err
	}
	return Name(((int(base)+shift)%12 + 12) % 12), nil
}

// parseClass splits a pitch class into its natural name and accidental shift.
func parseClass(s string) (Name, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty", ErrUnknownName)
	}
	var base Name
	switch s[0] {
	case 'C', 'c':
		base = C
	case 'D', 'd':
		base = D
	case 'E', 'e':
		base = E
	case 'F', 'f':
		base = F
	case 'G', 'g':
		base = G
	case 'A', 'a':
		base = A
	case 'B', 'b':
		base = B
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownName, s)
	}
	shift := 0
	for _, r := range s[1:] {
		switch r {
		case '#':
			shift++
		case 'b':
			shift--
		default:
			return 0, 0, fmt.Errorf("%w: %q", ErrUnknownName, s)
		}
	}
	return base, shift, nil
}

// ParsePitch parses scientific pitch notation such as "A4", "C#3", "Eb5" or "G-1".
//
// Accidentals may cross the octave boundary: "Cb4" is B3 and "B#3" is C4.
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return r == '-' || (r >= '0' && r <= '9')
	})
	if i <= 0 {
		return 0, fmt.Errorf("%w: %q has no octave", ErrUnknownName, s)
	}
	name, shift, err := parseClass(s[:i])
	if err != nil {
		return 0, err
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, fmt.Errorf("failed to parse octave in %q: %w", s, err)
	}
	return New(name, octave).Transpose(shift), nil
}
