package pipe

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// maxWaitObjects is the WaitForMultipleObjects handle limit.
const maxWaitObjects = 64

type osBackend struct{}

func (osBackend) Probe(c *Channel) (bool, error) {
	return c.Probe()
}

func (osBackend) Wait(chs []*Channel, timeout time.Duration) ([]int, error) {
	if len(chs) > maxWaitObjects {
		return nil, fmt.Errorf("%w: %d pipes, the limit is %d", ErrTooManyStreams, len(chs), maxWaitObjects)
	}
	events := make([]windows.Handle, len(chs))
	for i, c := range chs {
		ep, ok := c.ep.(*overlappedEndpoint)
		if !ok || !ep.reading {
			return nil, fmt.Errorf("channel %s has no pending read", c.name)
		}
		events[i] = ep.event
	}

	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeoutMillis(timeout))
	}
	ev, err := windows.WaitForMultipleObjects(events, false, ms)
	if err != nil {
		return nil, os.NewSyscallError("WaitForMultipleObjects", err)
	}
	if ev == uint32(windows.WAIT_TIMEOUT) {
		return nil, nil
	}

	// Report every signaled event, not only the first.
	var fired []int
	for i, h := range events {
		if s, err := windows.WaitForSingleObject(h, 0); err == nil && s == windows.WAIT_OBJECT_0 {
			fired = append(fired, i)
		}
	}
	return fired, nil
}
