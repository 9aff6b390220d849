//go:build unix

package pipe

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/procmux/internal/syserr"
)

// fdEndpoint reads a non-blocking pipe descriptor directly, bypassing the
// runtime poller so that readiness can be multiplexed with poll(2).
type fdEndpoint struct {
	f   *os.File
	fd  int
	buf []byte
}

func newEndpoint(_ string, chunkSize int) (endpoint, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	fd := int(r.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, nil, os.NewSyscallError("setnonblock", err)
	}
	return &fdEndpoint{f: r, fd: fd, buf: make([]byte, chunkSize)}, w, nil
}

func (e *fdEndpoint) read(block bool) ([]byte, error) {
	for {
		n, err := syserr.RetryValue(func() (int, error) {
			return unix.Read(e.fd, e.buf)
		})
		switch {
		case errors.Is(err, unix.EAGAIN):
			if !block {
				return nil, errWouldBlock
			}
			if err := waitReadable(e.fd); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, os.NewSyscallError("read", err)
		case n == 0:
			return nil, io.EOF
		default:
			return e.buf[:n], nil
		}
	}
}

func (e *fdEndpoint) pending() bool {
	return false
}

func (e *fdEndpoint) close() error {
	return e.f.Close()
}

// waitReadable blocks until fd is readable or hung up.
func waitReadable(fd int) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	_, err := syserr.RetryValue(func() (int, error) {
		return unix.Poll(fds, -1)
	})
	if err != nil {
		return os.NewSyscallError("poll", err)
	}
	return nil
}
