// Package pipe implements the parent end of a child's output pipe.
//
// A Channel owns the OS read endpoint, a growable byte buffer and, on
// Windows, the state of the single outstanding overlapped read. Readiness is
// reported through Readiness values and the platform multiplexing primitive
// (poll(2) on Unix, WaitForMultipleObjects on Windows) is hidden behind the
// Backend interface, so the polling algorithm above it is written once.
//
// Channels are not safe for concurrent use.
package pipe
