package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiway/tonal/pkg/chord"
	"github.com/hiway/tonal/pkg/length"
	"github.com/hiway/tonal/pkg/synth"
)

func TestWriteChord(t *testing.T) {
	c := chord.NewMajor(-9, length.Quarter, 0.5)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, 8000, c.Samples(120, 8000)))

	out := buf.Bytes()
	require.Len(t, out, HeaderSize+4000*2)
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, uint32(len(out)-8), binary.LittleEndian.Uint32(out[4:]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, "fmt ", string(out[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[20:]), "PCM")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[22:]), "mono")
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(out[24:]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(out[28:]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(out[32:]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(out[34:]))
	assert.Equal(t, "data", string(out[36:40]))
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(out[40:]))

	samples := c.Samples(120, 8000).Collect()
	for i, v := range samples {
		require.Equal(t, v, int16(binary.LittleEndian.Uint16(out[HeaderSize+i*2:])))
	}
}

func TestEncodeMatchesWrite(t *testing.T) {
	c := chord.NewMajor(0, length.Eighth, 0.3)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, 22050, synth.Concat(c.Samples(100, 22050), c.Samples(100, 22050))))

	samples := append(c.Samples(100, 22050).Collect(), c.Samples(100, 22050).Collect()...)
	encoded, err := Encode(samples, 22050)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), encoded)
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Encode(nil, 44100)
	require.NoError(t, err)
	require.Len(t, out, HeaderSize)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(out[40:]))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	err := Write(failingWriter{}, 8000, synth.New(10, nil, 8000, 0))
	assert.ErrorContains(t, err, "disk full")
}

func TestHeaderTooLong(t *testing.T) {
	_, err := Header(44100, -1)
	assert.ErrorIs(t, err, ErrTooLong)
	_, err = Header(44100, math.MaxInt32)
	assert.ErrorIs(t, err, ErrTooLong)
}
