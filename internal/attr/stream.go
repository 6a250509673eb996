package attr

import (
	"bufio"
	"io"
)

// Reader is the byte source an attribute list is scanned from. ReadByte
// reports end of input as io.EOF; any other error is treated the same way
// by the decoder. Name identifies the peer in diagnostics.
type Reader interface {
	io.ByteReader
	Name() string
}

// Stream adapts a transport connection to the codec. Each Stream owns its
// buffers, so independent streams can be used from different goroutines.
// A single Stream must not carry two encode or decode calls at once.
type Stream struct {
	name string
	r    *bufio.Reader
	w    *bufio.Writer
}

var _ Reader = (*Stream)(nil)

func NewStream(rw io.ReadWriter, name string) *Stream {
	return &Stream{name: name, r: bufio.NewReader(rw), w: bufio.NewWriter(rw)}
}

func NewReader(r io.Reader, name string) *Stream {
	return &Stream{name: name, r: bufio.NewReader(r)}
}

func NewWriter(w io.Writer, name string) *Stream {
	return &Stream{name: name, w: bufio.NewWriter(w)}
}

func (s *Stream) Name() string {
	return s.name
}

func (s *Stream) ReadByte() (byte, error) {
	if s.r == nil {
		return 0, io.EOF
	}
	return s.r.ReadByte()
}

func (s *Stream) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, io.ErrClosedPipe
	}
	return s.w.Write(p)
}

func (s *Stream) Flush() error {
	if s.w == nil {
		return nil
	}
	return s.w.Flush()
}
