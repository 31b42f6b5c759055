package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"

	"github.com/hiway/tonal/pkg/synth"
)

const (
	// ChannelCount represents mono audio
	ChannelCount = 1

	pollInterval = time.Millisecond
)

// ErrRateMismatch is returned when the shared audio context was already opened
// at another sample rate.
var ErrRateMismatch = errors.New("audio context already initialized at another sample rate")

// Player is the interface for playing sample streams.
type Player interface {
	// Play blocks until src is exhausted or ctx is done.
	Play(ctx context.Context, src synth.Source) error
	Close() error
}

var (
	otoCtx  *oto.Context
	otoRate int
	once    sync.Once
	ctxErr  error
)

// initOtoContext initializes the oto context singleton. Oto allows a single
// context per process, so later callers must agree on the rate.
func initOtoContext(rate int) (*oto.Context, error) {
	once.Do(func() {
		op := &oto.NewContextOptions{}
		op.SampleRate = rate
		op.ChannelCount = ChannelCount
		op.Format = oto.FormatSignedInt16LE

		var readyChan chan struct{}
		otoCtx, readyChan, ctxErr = oto.NewContext(op)
		if ctxErr == nil {
			otoRate = rate
			<-readyChan // Wait for the context to be ready
		}
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	if otoRate != rate {
		return nil, fmt.Errorf("%w: %d Hz (requested %d Hz)", ErrRateMismatch, otoRate, rate)
	}
	return otoCtx, nil
}

// OtoPlayer plays streams on the default audio device through ebitengine/oto.
type OtoPlayer struct {
	log  zerolog.Logger
	ctx  *oto.Context
	rate int
}

// NewOtoPlayer creates a new player using the Oto library.
func NewOtoPlayer(rate int, log zerolog.Logger) (*OtoPlayer, error) {
	ctx, err := initOtoContext(rate)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Oto audio context")
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	log.Debug().Int("sample_rate", rate).Msg("Oto audio context initialized successfully")

	return &OtoPlayer{
		log:  log.With().Str("player_type", "oto").Logger(),
		ctx:  ctx,
		rate: rate,
	}, nil
}

// Play streams src to the audio device and waits for it to finish.
func (p *OtoPlayer) Play(ctx context.Context, src synth.Source) error {
	p.log.Debug().Int("samples", src.Len()).Msg("Playing stream")

	player := p.ctx.NewPlayer(synth.NewReader(src))
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			p.log.Debug().Msg("Playback canceled")
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		return fmt.Errorf("oto player error: %w", err)
	}
	p.log.Trace().Msg("Finished playing stream")
	return nil
}

// Close cleans up the OtoPlayer resources.
func (p *OtoPlayer) Close() error {
	p.log.Debug().Msg("Closing OtoPlayer")
	// The Oto context is process-wide and outlives individual players.
	return nil
}

// StubPlayer drains streams without an audio device and keeps what it played.
type StubPlayer struct {
	log      zerolog.Logger
	rate     int
	realtime bool

	mu     sync.Mutex
	played [][]int16
}

// NewStubPlayer creates a new StubPlayer. With realtime set, Play takes as long
// as the stream would take to hear at rate.
func NewStubPlayer(rate int, realtime bool, log zerolog.Logger) *StubPlayer {
	return &StubPlayer{
		log:      log.With().Str("player_type", "stub").Logger(),
		rate:     rate,
		realtime: realtime,
	}
}

// Play consumes src and records its samples.
func (p *StubPlayer) Play(ctx context.Context, src synth.Source) error {
	samples := make([]int16, 0, src.Len())
	for {
		v, ok := src.Next()
		if !ok {
			break
		}
		samples = append(samples, v)
	}
	p.log.Debug().Int("samples", len(samples)).Msg("Simulating playing stream")

	if p.realtime && p.rate > 0 {
		d := time.Duration(len(samples)) * time.Second / time.Duration(p.rate)
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	p.played = append(p.played, samples)
	p.mu.Unlock()
	return nil
}

// Played returns the streams played so far, in order.
func (p *StubPlayer) Played() [][]int16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]int16, len(p.played))
	copy(out, p.played)
	return out
}

// Close cleans up the StubPlayer resources.
func (p *StubPlayer) Close() error {
	p.log.Debug().Msg("Closing StubPlayer")
	return nil
}
