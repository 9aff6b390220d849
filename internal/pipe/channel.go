package pipe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/giantswarm/procmux/internal/syserr"
)

// DefaultReadChunkSize is the number of bytes requested from the OS per read.
const DefaultReadChunkSize = 64 * 1024

// ErrClosed is returned when reading from a closed channel.
const ErrClosed = syserr.Error("pipe channel is closed")

// errWouldBlock is returned by a non-blocking endpoint read when no data is
// available. On Windows it also means an overlapped read is now pending.
const errWouldBlock = syserr.Error("read would block")

// endpoint is the platform read end of a pipe.
type endpoint interface {
	// read returns the next bytes from the pipe. The slice is only valid
	// until the next call. A non-blocking read returns errWouldBlock when
	// nothing is available and io.EOF once the writer is gone.
	read(block bool) ([]byte, error)

	// pending reports whether an asynchronous read is outstanding.
	pending() bool

	close() error
}

// Channel is the parent's end of one child output pipe.
type Channel struct {
	name string
	ep   endpoint

	// buf[cursor:] holds bytes read from the OS and not yet consumed.
	buf    []byte
	cursor int

	// eof is set when the OS reported end of file and cleared when that end
	// of file is delivered to a reader, which also releases the endpoint.
	eof bool

	closed  bool
	onClose func()
}

// New creates a pipe and returns the parent's Channel and the write end to
// hand to the child. The caller must close the write end once the child has
// started. A non-positive chunkSize uses DefaultReadChunkSize.
func New(name string, chunkSize int) (*Channel, *os.File, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultReadChunkSize
	}
	ep, w, err := newEndpoint(name, chunkSize)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s pipe: %w", name, err)
	}
	return &Channel{name: name, ep: ep}, w, nil
}

// Name returns the name given to New, such as "stdout".
func (c *Channel) Name() string {
	return c.name
}

// OnClose registers fn to run once when the channel is closed. The owning
// process uses it to detach the channel from its stream table.
func (c *Channel) OnClose(fn func()) {
	c.onClose = fn
}

// Buffered returns the number of bytes that can be read without an OS call.
func (c *Channel) Buffered() int {
	return len(c.buf) - c.cursor
}

// Classify reports the readiness of the channel without any OS call.
func (c *Channel) Classify() Readiness {
	switch {
	case c == nil || c.closed || (c.ep == nil && c.Buffered() == 0):
		return Closed
	case c.Buffered() > 0 || c.eof:
		return Ready
	default:
		return Silent
	}
}

// Pending reports whether an asynchronous read is outstanding.
func (c *Channel) Pending() bool {
	return c.ep != nil && c.ep.pending()
}

// Probe attempts one non-blocking read and reports whether the channel is
// now Ready. On Windows a read that does not complete immediately stays
// pending, and the channel can then be waited for.
func (c *Channel) Probe() (bool, error) {
	if c.closed || c.ep == nil {
		return false, nil
	}
	if err := c.fill(false); err != nil {
		return false, err
	}
	return c.Classify() == Ready, nil
}

// fill appends at least one chunk to the buffer, or records end of file. A
// non-blocking fill that finds nothing returns nil and leaves the buffer
// unchanged.
func (c *Channel) fill(block bool) error {
	if c.eof || c.ep == nil {
		return nil
	}
	data, err := c.ep.read(block)
	switch {
	case errors.Is(err, errWouldBlock):
		return nil
	case errors.Is(err, io.EOF):
		c.eof = true
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", c.name, err)
	}
	if c.cursor == len(c.buf) {
		c.buf = c.buf[:0]
		c.cursor = 0
	}
	c.buf = append(c.buf, data...)
	return nil
}

// Read implements io.Reader. Buffered bytes are returned first; otherwise it
// blocks until the child writes or closes its end. io.EOF is returned exactly
// once, after which the endpoint is released and the channel reads as
// Closed.
func (c *Channel) Read(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	for c.Buffered() == 0 {
		if c.eof {
			c.deliverEOF()
			return 0, io.EOF
		}
		if c.ep == nil {
			return 0, io.EOF
		}
		if err := c.fill(true); err != nil {
			return 0, err
		}
	}
	return c.consume(p), nil
}

// TryRead is Read without blocking: it returns buffered bytes, otherwise
// makes one non-blocking read from the OS. It returns 0 and nil when nothing
// is available yet, and io.EOF exactly once like Read.
func (c *Channel) TryRead(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if c.Buffered() == 0 {
		if err := c.fill(false); err != nil {
			return 0, err
		}
	}
	if c.Buffered() > 0 {
		return c.consume(p), nil
	}
	if c.eof {
		c.deliverEOF()
		return 0, io.EOF
	}
	if c.ep == nil {
		return 0, io.EOF
	}
	return 0, nil
}

func (c *Channel) consume(p []byte) int {
	n := copy(p, c.buf[c.cursor:])
	c.cursor += n
	return n
}

func (c *Channel) deliverEOF() {
	c.eof = false
	c.releaseEndpoint()
}

func (c *Channel) releaseEndpoint() error {
	if c.ep == nil {
		return nil
	}
	err := c.ep.close()
	c.ep = nil
	return err
}

// Close releases the endpoint and detaches the channel from its owner.
// Later polls report it as Closed. Close is idempotent.
func (c *Channel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.releaseEndpoint()
	c.buf = nil
	c.cursor = 0
	if c.onClose != nil {
		fn := c.onClose
		c.onClose = nil
		fn()
	}
	return err
}
