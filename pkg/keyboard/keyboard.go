package keyboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/hiway/tonal/pkg/chord"
	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/pitch"
)

const (
	DefaultOctave = 4

	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// keys maps the home row and the row above it to semitones above C, laid out
// like the white and black keys of a piano.
var keys = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

// Keyboard turns key presses into chords.
//
// Lower-case keys play single notes, upper-case keys play the major triad on
// that note. 'z' and 'x' move down and up an octave; 'q', Ctrl-C and Ctrl-D quit.
type Keyboard struct {
	log    zerolog.Logger
	in     io.Reader
	octave int
	length length.Length
	volume float64

	readers sync.WaitGroup

	// HandleChord is called for every chord played.
	HandleChord func(c *chord.Chord) error
}

// New creates a Keyboard reading from in.
func New(in io.Reader, l length.Length, volume float64, log zerolog.Logger) *Keyboard {
	return &Keyboard{
		log:    log.With().Str("component", "keyboard").Logger(),
		in:     in,
		octave: DefaultOctave,
		length: l,
		volume: volume,
	}
}

// Octave returns the octave lower-case 'a' currently plays C in.
func (k *Keyboard) Octave() int {
	return k.octave
}

// Press handles a single key. It returns the chord to play, if any, and
// whether the key asks to quit.
func (k *Keyboard) Press(b byte) (*chord.Chord, bool) {
	switch b {
	case 'q', 'Q', keyCtrlC, keyCtrlD:
		return nil, true
	case 'z':
		k.octave--
		k.log.Debug().Int("octave", k.octave).Msg("Octave down")
		return nil, false
	case 'x':
		k.octave++
		k.log.Debug().Int("octave", k.octave).Msg("Octave up")
		return nil, false
	}

	major := b >= 'A' && b <= 'Z'
	if major {
		b += 'a' - 'A'
	}
	offset, ok := keys[b]
	if !ok {
		return nil, false
	}
	root := pitch.New(pitch.C, k.octave).Transpose(offset)
	if major {
		return chord.NewMajor(root, k.length, k.volume), false
	}
	return chord.New([]pitch.Pitch{root}, k.length, k.volume), false
}

// Run reads keys until quit, end of input, or ctx is done. When the input is
// a terminal it is switched to raw mode for the duration of the call.
func (k *Keyboard) Run(ctx context.Context) error {
	if f, ok := k.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			k.log.Error().Err(err).Msg("Failed to set raw mode on input")
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer func() {
			if err := term.Restore(int(f.Fd()), oldState); err != nil {
				k.log.Warn().Err(err).Msg("Failed to restore terminal state")
			}
		}()
	}

	type chunk struct {
		data []byte
		err  error
	}
	// The reader goroutine may outlive Run while blocked in Read; it exits on
	// the next key or when the input closes.
	reads := make(chan chunk)
	done := make(chan struct{})
	defer close(done)
	k.readers.Add(1)
	go func() {
		defer k.readers.Done()
		for {
			buf := make([]byte, 32)
			n, err := k.in.Read(buf)
			select {
			case reads <- chunk{buf[:n], err}:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	k.log.Info().Int("octave", k.octave).Msg("Keyboard ready")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-reads:
			for _, b := range r.data {
				c, quit := k.Press(b)
				if quit {
					k.log.Debug().Msg("Quit key pressed")
					return nil
				}
				if c != nil && k.HandleChord != nil {
					if err := k.HandleChord(c); err != nil {
						k.log.Error().Err(err).Msg("Chord handler failed")
					}
				}
			}
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("failed to read input: %w", r.err)
			}
		}
	}
}
