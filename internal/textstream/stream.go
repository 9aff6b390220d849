package textstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/giantswarm/procmux/internal/syserr"
)

// ErrStreamClosed is returned by reads after Close.
const ErrStreamClosed = syserr.Error("stream is closed")

const readChunk = 4096

// Source supplies raw bytes. Read blocks until data or end of file; TryRead
// returns 0 and nil when nothing is available yet. Both return io.EOF
// exactly once.
type Source interface {
	io.Reader
	io.Closer
	TryRead(p []byte) (int, error)
}

// Stream reads decoded lines from a Source. It does not own the source's
// lifetime beyond Close. Stream is not safe for concurrent use.
type Stream struct {
	src Source
	dec transform.Transformer

	// raw holds bytes read but not yet decoded, such as a split multibyte
	// sequence. text holds decoded bytes not yet returned as lines.
	raw  []byte
	text []byte
	// last is the last decoded byte. It starts as '\n' so that an empty
	// stream does not produce a synthetic empty line.
	last byte

	eof    bool
	closed bool

	chunk   []byte
	scratch []byte
}

// New returns a Stream decoding src with enc. A nil enc means UTF-8.
func New(src Source, enc encoding.Encoding) *Stream {
	if enc == nil {
		enc, _ = Lookup(DefaultEncoding)
	}
	return &Stream{
		src:     src,
		dec:     enc.NewDecoder(),
		last:    '\n',
		chunk:   make([]byte, readChunk),
		scratch: make([]byte, readChunk),
	}
}

// ReadLine returns the next line without its terminator, blocking until a
// complete line or end of file. At end of file it returns "" and false; once
// end of file has been seen it never blocks or reads from the source again.
func (s *Stream) ReadLine() (string, bool, error) {
	if s.closed {
		return "", false, ErrStreamClosed
	}
	for {
		if line, ok := s.nextLine(); ok {
			return line, true, nil
		}
		if s.eof {
			return "", false, nil
		}
		if _, err := s.fill(true); err != nil {
			return "", false, err
		}
	}
}

// ReadLines returns up to n lines, blocking for each. A negative n reads
// until end of file. Fewer than n lines are returned only at end of file.
func (s *Stream) ReadLines(n int) ([]string, error) {
	var lines []string
	for n < 0 || len(lines) < n {
		line, ok, err := s.ReadLine()
		if err != nil {
			return lines, err
		}
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ReadAvailable returns the complete lines that can be produced without
// blocking. A partial line stays buffered until its newline or end of file
// arrives.
func (s *Stream) ReadAvailable() ([]string, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}
	var lines []string
	for {
		if line, ok := s.nextLine(); ok {
			lines = append(lines, line)
			continue
		}
		if s.eof {
			return lines, nil
		}
		progressed, err := s.fill(false)
		if err != nil {
			return lines, err
		}
		if !progressed {
			return lines, nil
		}
	}
}

// IsEOF reports whether end of file has been reached. Remaining buffered
// lines can still be read. Once true it stays true.
func (s *Stream) IsEOF() bool {
	return s.eof
}

// Close releases the decoder and closes the source. Close is idempotent.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.dec = nil
	s.raw, s.text, s.chunk, s.scratch = nil, nil, nil, nil
	return s.src.Close()
}

func (s *Stream) nextLine() (string, bool) {
	i := bytes.IndexByte(s.text, '\n')
	if i < 0 {
		return "", false
	}
	line := bytes.TrimSuffix(s.text[:i], []byte{'\r'})
	out := string(line)
	s.text = s.text[i+1:]
	if len(s.text) == 0 {
		s.text = nil
	}
	return out, true
}

// fill reads one chunk from the source and decodes it. It reports whether
// anything was read or end of file was reached.
func (s *Stream) fill(block bool) (bool, error) {
	var (
		n   int
		err error
	)
	if block {
		n, err = s.src.Read(s.chunk)
	} else {
		n, err = s.src.TryRead(s.chunk)
	}
	if n > 0 {
		s.raw = append(s.raw, s.chunk[:n]...)
		if derr := s.decode(false); derr != nil {
			return true, derr
		}
	}
	switch {
	case errors.Is(err, io.EOF):
		if derr := s.decode(true); derr != nil {
			return true, derr
		}
		if s.last != '\n' {
			s.appendText([]byte{'\n'})
		}
		s.eof = true
		return true, nil
	case err != nil:
		return n > 0, fmt.Errorf("read stream: %w", err)
	}
	return n > 0, nil
}

// decode moves as much of raw through the decoder as it can. Without atEOF
// an incomplete trailing sequence is kept for the next call.
func (s *Stream) decode(atEOF bool) error {
	for {
		nDst, nSrc, err := s.dec.Transform(s.scratch, s.raw, atEOF)
		s.appendText(s.scratch[:nDst])
		s.raw = append(s.raw[:0], s.raw[nSrc:]...)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				s.scratch = make([]byte, 2*len(s.scratch))
			}
		case errors.Is(err, transform.ErrShortSrc) && !atEOF:
			return nil
		default:
			return fmt.Errorf("decode stream: %w", err)
		}
	}
}

func (s *Stream) appendText(b []byte) {
	if len(b) == 0 {
		return
	}
	s.text = append(s.text, b...)
	s.last = b[len(b)-1]
}
