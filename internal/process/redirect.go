package process

import (
	"fmt"
	"os"

	"github.com/giantswarm/procmux/internal/fileutil"
	"github.com/giantswarm/procmux/internal/pipe"
)

// stdio holds the descriptors handed to a child and the parent ends of any
// pipes. The child ends are closed by the parent once the child has started.
type stdio struct {
	stdin  *os.File
	stdout *os.File
	stderr *os.File

	stdoutCh *pipe.Channel
	stderrCh *pipe.Channel
}

// openStdio opens stdin from the null device and the stdout and stderr
// targets of cfg. On failure everything already opened is closed.
func openStdio(cfg SpawnConfig) (*stdio, error) {
	s := &stdio{}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		return nil, redirectError("stdin", err)
	}
	s.stdin = stdin

	s.stdout, s.stdoutCh, err = openTarget(cfg.Stdout, "stdout", cfg.ReadChunkSize)
	if err != nil {
		s.closeChildEnds()
		return nil, err
	}
	s.stderr, s.stderrCh, err = openTarget(cfg.Stderr, "stderr", cfg.ReadChunkSize)
	if err != nil {
		s.closeChildEnds()
		s.closeChannels()
		return nil, err
	}
	return s, nil
}

// openTarget returns the child's end for t and, for a pipe, the parent's
// channel.
func openTarget(t Target, stream string, chunkSize int) (*os.File, *pipe.Channel, error) {
	switch t.Kind {
	case TargetNull:
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, nil, redirectError(stream, err)
		}
		return f, nil, nil
	case TargetFile:
		f, err := fileutil.CreateOutput(t.Path)
		if err != nil {
			return nil, nil, redirectError(stream, err)
		}
		return f, nil, nil
	case TargetPipe:
		ch, w, err := pipe.New(stream, chunkSize)
		if err != nil {
			return nil, nil, redirectError(stream, err)
		}
		return w, ch, nil
	default:
		return nil, nil, fmt.Errorf("%s: %w: unknown target kind %d", stream, ErrStdioRedirectFailed, t.Kind)
	}
}

func redirectError(stream string, err error) error {
	return fmt.Errorf("%s: %w: %w", stream, ErrStdioRedirectFailed, err)
}

func (s *stdio) childFiles() [3]*os.File {
	return [3]*os.File{s.stdin, s.stdout, s.stderr}
}

// closeChildEnds closes the descriptors given to the child and nils them to
// prevent a double close.
func (s *stdio) closeChildEnds() {
	for _, f := range []**os.File{&s.stdin, &s.stdout, &s.stderr} {
		if *f != nil {
			_ = (*f).Close()
			*f = nil
		}
	}
}

// closeChannels closes the parent ends after a failed spawn.
func (s *stdio) closeChannels() {
	if s.stdoutCh != nil {
		_ = s.stdoutCh.Close()
		s.stdoutCh = nil
	}
	if s.stderrCh != nil {
		_ = s.stderrCh.Close()
		s.stderrCh = nil
	}
}
