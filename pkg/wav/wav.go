package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hiway/tonal/pkg/synth"
)

const (
	// HeaderSize is the size of the RIFF header written before the samples.
	HeaderSize = 44

	channels      = 1
	bitsPerSample = 16
	formatPCM     = 1
)

// ErrTooLong is returned when a stream does not fit in a RIFF file.
var ErrTooLong = errors.New("stream too long for a WAV file")

// Header returns the header of a 16-bit mono PCM file holding n samples.
func Header(rate uint32, n int) ([]byte, error) {
	dataSize := uint64(n) * synth.BytesPerSample
	if n < 0 || dataSize+HeaderSize-8 > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d samples", ErrTooLong, n)
	}
	blockAlign := channels * synth.BytesPerSample

	out := make([]byte, HeaderSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(dataSize+HeaderSize-8))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], formatPCM)
	binary.LittleEndian.PutUint16(out[22:], channels)
	binary.LittleEndian.PutUint32(out[24:], rate)
	binary.LittleEndian.PutUint32(out[28:], rate*uint32(blockAlign))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], bitsPerSample)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	return out, nil
}

// Write encodes src as a WAV file. The header is sized from src.Len(), so the
// whole stream is written without buffering or seeking.
func Write(w io.Writer, rate uint32, src synth.Source) error {
	n := src.Len()
	header, err := Header(rate, n)
	if err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}
	written, err := io.Copy(w, synth.NewReader(src))
	if err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if written != int64(n)*synth.BytesPerSample {
		return fmt.Errorf("stream produced %d bytes, header promised %d", written, int64(n)*synth.BytesPerSample)
	}
	return nil
}

// Encode returns samples as an in-memory WAV file.
func Encode(samples []int16, rate uint32) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(samples)*synth.BytesPerSample)
	if err := Write(&buf, rate, &sliceSource{samples: samples}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type sliceSource struct {
	samples []int16
}

func (s *sliceSource) Next() (int16, bool) {
	if len(s.samples) == 0 {
		return 0, false
	}
	v := s.samples[0]
	s.samples = s.samples[1:]
	return v, true
}

func (s *sliceSource) Len() int {
	return len(s.samples)
}
