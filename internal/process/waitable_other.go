//go:build unix && !linux

package process

// beginWait is not available without waitid(WNOWAIT); Tracker falls back to
// non-blocking reaps with backoff.
func (p *unixProcess) beginWait() (func() error, func(), error) {
	return nil, nil, errBlockingWaitUnsupported
}
