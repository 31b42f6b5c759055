package length

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownLength is returned when a note length cannot be parsed.
var ErrUnknownLength = errors.New("unknown note length")

// Length is the length of a musical note. Its value is the base-2 exponent of the
// note's tempo relative to a quarter note.
type Length int

// Note lengths. A whole note lasts four beats, a sixteenth a quarter beat.
const (
	Whole     Length = -2
	Half      Length = -1
	Quarter   Length = 0 // one beat
	Eighth    Length = 1
	Sixteenth Length = 2
)

// All lists every length from longest to shortest.
var All = []Length{Whole, Half, Quarter, Eighth, Sixteenth}

// Valid reports whether l is one of the defined lengths.
func (l Length) Valid() bool {
	return l >= Whole && l <= Sixteenth
}

// Seconds returns how long a note of length l lasts at the given tempo in beats
// per minute, where one beat is a quarter note.
//
// bpm is not checked: zero yields +Inf and negative tempos yield negative times.
func (l Length) Seconds(bpm float64) float64 {
	return 60 / (bpm * math.Pow(2, float64(l)))
}

// Duration is Seconds as a time.Duration. Results that are not finite and
// non-negative are reported as 0.
func (l Length) Duration(bpm float64) time.Duration {
	s := l.Seconds(bpm)
	if !(s >= 0) || s*float64(time.Second) > math.MaxInt64 {
		return 0
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}

func (l Length) String() string {
	switch l {
	case Whole:
		return "whole"
	case Half:
		return "half"
	case Quarter:
		return "quarter"
	case Eighth:
		return "eighth"
	case Sixteenth:
		return "sixteenth"
	}
	return "Length(" + strconv.Itoa(int(l)) + ")"
}

// Parse parses a length by name ("quarter") or by fraction of a whole note ("1/4", "4").
func Parse(s string) (Length, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "whole", "1", "1/1":
		return Whole, nil
	case "half", "2", "1/2":
		return Half, nil
	case "quarter", "4", "1/4":
		return Quarter, nil
	case "eighth", "8", "1/8":
		return Eighth, nil
	case "sixteenth", "16", "1/16":
		return Sixteenth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLength, s)
}

// UnmarshalText lets lengths be decoded from config files by name.
func (l *Length) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalText encodes l by name.
func (l Length) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLength, int(l))
	}
	return []byte(l.String()), nil
}
