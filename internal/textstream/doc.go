// Package textstream turns a child's raw output bytes into decoded lines.
//
// A Stream pulls bytes from its Source on demand, decodes them with an owned
// golang.org/x/text decoder and splits them on '\n'. Output that does not
// end in a newline gets one synthetic '\n' at end of file, so the last line
// is never lost and an empty stream yields no lines at all.
package textstream
