package synth

import (
	"encoding/binary"
	"io"
)

// Sequence plays several sources back to back.
type Sequence struct {
	parts []Source
}

// Concat returns a Sequence over parts in order.
func Concat(parts ...Source) *Sequence {
	return &Sequence{parts: parts}
}

// Next returns the next sample of the first source that is not exhausted.
func (q *Sequence) Next() (int16, bool) {
	for len(q.parts) > 0 {
		if v, ok := q.parts[0].Next(); ok {
			return v, true
		}
		q.parts = q.parts[1:]
	}
	return 0, false
}

// Len returns the number of samples left across all sources.
func (q *Sequence) Len() int {
	n := 0
	for _, p := range q.parts {
		n += p.Len()
	}
	return n
}

// Fill writes up to len(dst) samples into dst and returns how many were written.
func (q *Sequence) Fill(dst []int16) int {
	return fill(q, dst)
}

// BytesPerSample is the size of one encoded mono sample.
const BytesPerSample = 2

// Reader encodes a Source as signed 16-bit little-endian PCM.
type Reader struct {
	src      Source
	carry    byte
	hasCarry bool
}

// NewReader returns an io.Reader over src.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Read fills p with encoded samples. Buffers of odd length are supported; the
// second byte of a split sample is returned by the next call.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	if r.hasCarry {
		p[0] = r.carry
		r.hasCarry = false
		n = 1
	}
	for n+BytesPerSample <= len(p) {
		v, ok := r.src.Next()
		if !ok {
			break
		}
		binary.LittleEndian.PutUint16(p[n:], uint16(v))
		n += BytesPerSample
	}
	if n == len(p)-1 {
		if v, ok := r.src.Next(); ok {
			var b [BytesPerSample]byte
			binary.LittleEndian.PutUint16(b[:], uint16(v))
			p[n] = b[0]
			r.carry = b[1]
			r.hasCarry = true
			n++
		}
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Len returns the number of bytes left to read.
func (r *Reader) Len() int {
	n := r.src.Len() * BytesPerSample
	if r.hasCarry {
		n++
	}
	return n
}
