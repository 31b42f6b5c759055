package session

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiway/tonal/pkg/chord"
	"github.com/hiway/tonal/pkg/config"
	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/pitch"
	"github.com/hiway/tonal/pkg/player"
	"github.com/hiway/tonal/pkg/synth"
	"github.com/hiway/tonal/pkg/wav"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BPM = 240
	cfg.SampleRate = 8000
	require.NoError(t, config.Decode(`
[[chords]]
major = "C4"
length = "quarter"

[[chords]]
pitches = ["A4"]
length = "eighth"
volume = 0.2
`, cfg))
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestPlaySong(t *testing.T) {
	cfg := testConfig(t)
	stub := player.NewStubPlayer(int(cfg.SampleRate), false, zerolog.Nop())
	s := New(cfg, stub, zerolog.Nop())
	defer s.Stop()

	require.NoError(t, s.PlaySong(context.Background()))

	played := stub.Played()
	require.Len(t, played, 2)
	assert.Equal(t, chord.NewMajor(pitch.New(pitch.C, 4), length.Quarter, cfg.Volume).Samples(240, 8000).Collect(), played[0])
	assert.Equal(t, chord.New([]pitch.Pitch{0}, length.Eighth, 0.2).Samples(240, 8000).Collect(), played[1])
}

func TestPlaySongCanceled(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg, player.NewStubPlayer(int(cfg.SampleRate), true, zerolog.Nop()), zerolog.Nop())
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.PlaySong(ctx))
}

func TestKeys(t *testing.T) {
	cfg := testConfig(t)
	stub := player.NewStubPlayer(int(cfg.SampleRate), false, zerolog.Nop())
	s := New(cfg, stub, zerolog.Nop())

	require.NoError(t, s.Keys(context.Background(), strings.NewReader("h"), length.Sixteenth))
	s.Stop()

	played := stub.Played()
	require.Len(t, played, 1)
	assert.Equal(t, chord.New([]pitch.Pitch{0}, length.Sixteenth, cfg.Volume).Samples(240, 8000).Collect(), played[0])
}

func TestRender(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg, nil, zerolog.Nop())
	defer s.Stop()

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))

	first := chord.NewMajor(pitch.New(pitch.C, 4), length.Quarter, cfg.Volume).Samples(240, 8000).Collect()
	second := chord.New([]pitch.Pitch{0}, length.Eighth, 0.2).Samples(240, 8000).Collect()
	want, err := wav.Encode(append(first, second...), 8000)
	require.NoError(t, err)
	assert.Equal(t, want, buf.Bytes())
	assert.Equal(t, uint32(2*(2000+1000)), binary.LittleEndian.Uint32(buf.Bytes()[40:]))
}

func TestPlayWithoutPlayer(t *testing.T) {
	s := New(testConfig(t), nil, zerolog.Nop())
	defer s.Stop()

	assert.ErrorIs(t, s.PlaySong(context.Background()), ErrNoPlayer)
	assert.ErrorIs(t, s.Keys(context.Background(), strings.NewReader("a"), length.Quarter), ErrNoPlayer)
}

// gatedPlayer holds every stream until gate is closed.
type gatedPlayer struct {
	*player.StubPlayer
	gate chan struct{}
}

func (p *gatedPlayer) Play(ctx context.Context, src synth.Source) error {
	select {
	case <-p.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.StubPlayer.Play(ctx, src)
}

// burstReader delivers a burst of presses, then opens gate once the keyboard
// has handled all of them.
type burstReader struct {
	reads int
	gate  chan struct{}
}

func (r *burstReader) Read(p []byte) (int, error) {
	r.reads++
	switch r.reads {
	case 1:
		return copy(p, "asdfgh"), nil
	case 2:
		return 0, nil
	}
	close(r.gate)
	return 0, io.EOF
}

func TestKeysLogsDroppedPresses(t *testing.T) {
	cfg := testConfig(t)
	gate := make(chan struct{})
	stub := &gatedPlayer{player.NewStubPlayer(int(cfg.SampleRate), false, zerolog.Nop()), gate}

	var logs bytes.Buffer
	log := zerolog.New(zerolog.SyncWriter(&logs)).Level(zerolog.DebugLevel)
	s := New(cfg, stub, log)

	require.NoError(t, s.Keys(context.Background(), &burstReader{gate: gate}, length.Sixteenth))
	s.Stop()

	played := stub.Played()
	assert.NotEmpty(t, played)
	assert.LessOrEqual(t, len(played), keysQueueSize+1)
	assert.Contains(t, logs.String(), "Key press dropped")
}
