// Package poll reports the readiness of many child output streams at once.
//
// Poll runs in three phases. Streams that already have buffered bytes or an
// undelivered end of file are reported without any system call. Otherwise
// every silent stream is probed once without blocking. Only if nothing became
// ready does Poll block in the backend's multiplexing wait, bounded by the
// timeout.
package poll
