//go:build unix

package pipe

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

type osBackend struct{}

func (osBackend) Probe(c *Channel) (bool, error) {
	return c.Probe()
}

func (osBackend) Wait(chs []*Channel, timeout time.Duration) ([]int, error) {
	fds := make([]unix.PollFd, len(chs))
	for i, c := range chs {
		ep, ok := c.ep.(*fdEndpoint)
		if !ok {
			return nil, fmt.Errorf("channel %s has no pollable descriptor", c.name)
		}
		fds[i] = unix.PollFd{Fd: int32(ep.fd), Events: unix.POLLIN}
	}

	deadline := time.Now().Add(timeout)
	wait := timeout
	for {
		n, err := unix.Poll(fds, timeoutMillis(wait))
		if errors.Is(err, unix.EINTR) {
			wait = remaining(timeout, deadline)
			continue
		}
		if err != nil {
			return nil, os.NewSyscallError("poll", err)
		}
		if n == 0 {
			return nil, nil
		}
		break
	}

	var fired []int
	for i, fd := range fds {
		if fd.Revents != 0 {
			fired = append(fired, i)
		}
	}
	return fired, nil
}
