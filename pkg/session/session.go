package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hiway/tonal/pkg/chord"
	"github.com/hiway/tonal/pkg/config"
	"github.com/hiway/tonal/pkg/keyboard"
	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/player"
	"github.com/hiway/tonal/pkg/queue"
	"github.com/hiway/tonal/pkg/synth"
	"github.com/hiway/tonal/pkg/wav"
)

const (
	songQueueSize = 4
	keysQueueSize = 2
)

// ErrNoPlayer is returned when playing on a session created without a player.
var ErrNoPlayer = errors.New("session has no player")

// Session plays the configured song or live key presses on a player.
type Session struct {
	cfg      *config.Config
	player   player.Player
	log      zerolog.Logger
	stopOnce sync.Once

	mu     sync.Mutex
	queues []*queue.Queue
}

// New creates a Session. The session owns p and closes it on Stop. p may be nil
// for sessions that only render.
func New(cfg *config.Config, p player.Player, log zerolog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		player: p,
		log:    log.With().Str("component", "session").Logger(),
	}
}

func (s *Session) settings() queue.Settings {
	return queue.Settings{
		BPM:     s.cfg.BPM,
		Rate:    s.cfg.SampleRate,
		Options: s.cfg.SampleOptions(),
	}
}

func (s *Session) newQueue(name string, capacity int) (*queue.Queue, error) {
	if s.player == nil {
		return nil, ErrNoPlayer
	}
	q := queue.NewQueue(name, capacity, s.settings(), s.player, s.log)
	s.mu.Lock()
	s.queues = append(s.queues, q)
	s.mu.Unlock()
	return q, nil
}

// PlaySong plays every configured chord in order and returns when the last one
// finished or ctx is done.
func (s *Session) PlaySong(ctx context.Context) error {
	song, err := s.cfg.Song()
	if err != nil {
		return err
	}
	s.log.Info().Int("chords", len(song)).Float64("bpm", s.cfg.BPM).Msg("Playing song")

	q, err := s.newQueue("song", songQueueSize)
	if err != nil {
		return err
	}
	for i, c := range song {
		if err := q.Enqueue(ctx, c); err != nil {
			q.Stop()
			return fmt.Errorf("failed to queue chord %d: %w", i+1, err)
		}
	}
	if err := q.Wait(ctx); err != nil {
		q.Stop()
		return err
	}
	s.log.Info().Msg("Song finished")
	return nil
}

// Keys plays chords for key presses read from in until the quit key, end of
// input, or ctx is done. Presses arriving while the queue is full are dropped.
// Chords still queued when the keyboard quits are played before returning.
func (s *Session) Keys(ctx context.Context, in io.Reader, l length.Length) error {
	q, err := s.newQueue("keys", keysQueueSize)
	if err != nil {
		return err
	}
	defer q.Stop()

	kb := keyboard.New(in, l, s.cfg.Volume, s.log)
	kb.HandleChord = func(c *chord.Chord) error {
		if !q.Add(c) {
			s.log.Debug().Ints("pitches", pitchInts(c)).Msg("Key press dropped")
		}
		return nil
	}
	if err := kb.Run(ctx); err != nil {
		return err
	}
	return q.Wait(ctx)
}

// Render writes the configured song to w as a WAV file.
func (s *Session) Render(w io.Writer) error {
	song, err := s.cfg.Song()
	if err != nil {
		return err
	}
	parts := make([]synth.Source, len(song))
	for i, c := range song {
		parts[i] = c.Samples(s.cfg.BPM, s.cfg.SampleRate, s.cfg.SampleOptions()...)
	}
	seq := synth.Concat(parts...)
	s.log.Info().Int("chords", len(song)).Int("samples", seq.Len()).Msg("Rendering song")

	if err := wav.Write(w, s.cfg.SampleRate, seq); err != nil {
		return fmt.Errorf("failed to render song: %w", err)
	}
	return nil
}

// Stop halts playback and releases the player.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.log.Debug().Msg("Stopping session")

		s.mu.Lock()
		queues := s.queues
		s.mu.Unlock()
		for _, q := range queues {
			q.Stop()
		}

		if s.player != nil {
			if err := s.player.Close(); err != nil {
				s.log.Error().Err(err).Msg("Error closing audio player")
			}
		}
		s.log.Info().Msg("Session stopped")
	})
}

func pitchInts(c *chord.Chord) []int {
	ps := c.Pitches()
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = int(p)
	}
	return out
}
