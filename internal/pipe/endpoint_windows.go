package pipe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sys/windows"
)

// overlappedEndpoint reads the server end of a named pipe with overlapped
// I/O. At most one read is outstanding; its completion signals event, which
// the backend waits on.
type overlappedEndpoint struct {
	handle  windows.Handle
	event   windows.Handle
	ov      windows.Overlapped
	buf     []byte
	reading bool
}

// newEndpoint creates an inbound, overlapped named pipe and connects an
// inheritable write handle to it. Anonymous pipes cannot be read with
// overlapped I/O, which is why a uniquely named pipe is used.
func newEndpoint(name string, chunkSize int) (endpoint, *os.File, error) {
	pipeName := fmt.Sprintf(`\\.\pipe\procmux-%d-%s-%s`, os.Getpid(), ulid.Make(), name)
	path, err := windows.UTF16PtrFromString(pipeName)
	if err != nil {
		return nil, nil, err
	}

	server, err := windows.CreateNamedPipe(path,
		windows.PIPE_ACCESS_INBOUND|windows.FILE_FLAG_OVERLAPPED|windows.FILE_FLAG_FIRST_PIPE_INSTANCE,
		windows.PIPE_TYPE_BYTE|windows.PIPE_READMODE_BYTE|windows.PIPE_WAIT|windows.PIPE_REJECT_REMOTE_CLIENTS,
		1, uint32(chunkSize), uint32(chunkSize), 0, nil)
	if err != nil {
		return nil, nil, os.NewSyscallError("CreateNamedPipe", err)
	}

	sa := &windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(*sa))
	client, err := windows.CreateFile(path, windows.GENERIC_WRITE, 0, sa,
		windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		_ = windows.CloseHandle(server)
		return nil, nil, os.NewSyscallError("CreateFile", err)
	}

	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		_ = windows.CloseHandle(server)
		_ = windows.CloseHandle(client)
		return nil, nil, os.NewSyscallError("CreateEvent", err)
	}

	ep := &overlappedEndpoint{
		handle: server,
		event:  event,
		buf:    make([]byte, chunkSize),
	}
	ep.ov.HEvent = event
	return ep, os.NewFile(uintptr(client), pipeName), nil
}

func (e *overlappedEndpoint) read(block bool) ([]byte, error) {
	for {
		if !e.reading {
			if err := windows.ResetEvent(e.event); err != nil {
				return nil, os.NewSyscallError("ResetEvent", err)
			}
			var n uint32
			err := windows.ReadFile(e.handle, e.buf, &n, &e.ov)
			switch {
			case err == nil:
				if n > 0 {
					return e.buf[:n], nil
				}
				continue
			case errors.Is(err, windows.ERROR_BROKEN_PIPE):
				return nil, io.EOF
			case errors.Is(err, windows.ERROR_IO_PENDING):
				e.reading = true
			default:
				return nil, os.NewSyscallError("ReadFile", err)
			}
		}

		var n uint32
		err := windows.GetOverlappedResult(e.handle, &e.ov, &n, block)
		switch {
		case errors.Is(err, windows.ERROR_IO_INCOMPLETE):
			return nil, errWouldBlock
		case errors.Is(err, windows.ERROR_BROKEN_PIPE):
			e.reading = false
			return nil, io.EOF
		case err != nil:
			e.reading = false
			return nil, os.NewSyscallError("GetOverlappedResult", err)
		}
		e.reading = false
		if n > 0 {
			return e.buf[:n], nil
		}
	}
}

func (e *overlappedEndpoint) pending() bool {
	return e.reading
}

// close cancels an outstanding read and waits for the cancellation, since the
// kernel writes into buf and ov until the read completes.
func (e *overlappedEndpoint) close() error {
	if e.reading {
		if err := windows.CancelIoEx(e.handle, &e.ov); err == nil {
			var n uint32
			_ = windows.GetOverlappedResult(e.handle, &e.ov, &n, true)
		}
		e.reading = false
	}
	err := windows.CloseHandle(e.handle)
	_ = windows.CloseHandle(e.event)
	return err
}
