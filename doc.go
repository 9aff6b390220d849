// Package procmux supervises child processes and multiplexes their output
// without blocking.
//
// A Supervisor spawns children, tracks their lifecycle, delivers signals and
// collects every exit status exactly once, so no child is left as a zombie
// and no recycled process ID is ever signaled. Piped stdout and stderr are
// exposed as decoded line Streams whose readiness can be polled across many
// processes at once from a single goroutine. Unix uses non-blocking pipes
// and poll(2); Windows uses overlapped named-pipe reads and
// WaitForMultipleObjects. Both report the same Readiness values.
//
// # Basic Usage
//
//	sup := procmux.NewSupervisor()
//	defer sup.Shutdown()
//
//	p, err := sup.Spawn("make", []string{"test"}, procmux.WithStdoutPipe())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lines, err := p.Stdout().ReadLines(-1)
//	status, err := p.Wait()
//
// # Multiplexing
//
// Poll reports which streams can be read without blocking. A typical loop
// reads whatever is ready and polls again:
//
//	reqs := []procmux.PollRequest{{Process: a, Stdout: true}, {Process: b, Stdout: true}}
//	for {
//	    ready, err := sup.Poll(reqs, procmux.Infinite)
//	    if err != nil {
//	        return err
//	    }
//	    // For every Ready stream: ReadAvailable, then check IsEOF.
//	    // Stop once every stream reports Closed.
//	}
//
// # Cleanup
//
// Process.Close kills a child that is still running and collects its
// status. Supervisor.Shutdown does this for every open process.
// Process.Kill goes straight to SIGKILL; there is no grace period.
package procmux
