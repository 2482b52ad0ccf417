// Package json provides JSON serialization on goccy/go-json with pooled
// scratch buffers.
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/pool"
)

// maxPooledBuffer caps the capacity a recycled buffer may keep.
const maxPooledBuffer = 1 << 20

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// Encoder writes values through buffers recycled by a pool. An Encoder is
// owned by one goroutine.
type Encoder struct {
	indent  string
	buffers *pool.Pool[*bytes.Buffer]
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithIndent indents every value with the given string.
func WithIndent(indent string) EncoderOption {
	return func(e *Encoder) {
		e.indent = indent
	}
}

// NewEncoder creates an Encoder whose buffer pool is prewarmed with one
// buffer.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	e.buffers = pool.New(
		pool.NewFactory(
			func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
			resetBuffer,
		),
		pool.WithName("json-buffers"),
		pool.WithLogger(zap.NewNop()),
	)
	_ = e.buffers.Prewarm(1)
	return e
}

func resetBuffer(b *bytes.Buffer) {
	if b.Cap() > maxPooledBuffer {
		*b = bytes.Buffer{}
		return
	}
	b.Reset()
}

// Encode writes v followed by a newline to w.
func (e *Encoder) Encode(w io.Writer, v interface{}) error {
	return e.EncodeAll(w, []interface{}{v})
}

// EncodeAll writes each value on its own line to w with a single write.
func (e *Encoder) EncodeAll(w io.Writer, values []interface{}) error {
	buf := e.buffers.Allocate()
	defer e.buffers.Free(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if e.indent != "" {
		enc.SetIndent("", e.indent)
	}
	for i, v := range values {
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode value").
				WithDetail("index", i)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write encoded values")
	}
	return nil
}

// Stats reports buffer reuse.
func (e *Encoder) Stats() pool.Stats {
	return e.buffers.Stats()
}
