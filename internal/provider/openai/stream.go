package openai

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StreamDecoder turns a byte stream into UTF-8 text chunk by chunk.
// A multi-byte character split across two chunks is held back until the
// rest arrives, so decoding chunk-wise gives the same text as decoding the
// whole stream at once. Invalid bytes become U+FFFD.
// A StreamDecoder belongs to a single response and is not safe for
// concurrent use.
type StreamDecoder struct {
	t       transform.Transformer
	pending []byte
}

// NewStreamDecoder returns a decoder with no carried-over bytes.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text decodable from chunk plus any bytes held back
// from the previous call. Incomplete trailing bytes are kept for the next
// call.
func (d *StreamDecoder) Decode(chunk []byte) ([]byte, error) {
	return d.decode(chunk, false)
}

// Flush ends the stream, emitting U+FFFD for any incomplete trailing
// sequence still held back.
func (d *StreamDecoder) Flush() ([]byte, error) {
	out, err := d.decode(nil, true)
	d.t.Reset()
	return out, err
}

// Pending reports how many bytes are held back waiting for more input.
func (d *StreamDecoder) Pending() int {
	return len(d.pending)
}

func (d *StreamDecoder) decode(chunk []byte, atEOF bool) ([]byte, error) {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}

	// Each invalid byte may expand to the 3-byte replacement character.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	out := make([]byte, 0, len(src))
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]

		switch err {
		case nil:
			return out, nil
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			d.pending = append([]byte(nil), src...)
			return out, nil
		default:
			return out, err
		}
	}
}
