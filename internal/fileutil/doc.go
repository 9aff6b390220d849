// Package fileutil provides the file operations behind stdio redirects and
// PID files.
//
// CreateOutput opens a redirect target the way a shell does for '>', creating
// the parent directory first. PIDFile writes a child's process ID under an
// exclusive gofrs/flock lock so that two supervisors cannot claim the same
// file.
package fileutil
