package textstream

import (
	"errors"
	"io"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

// chunkSource returns its chunks one per read. A nil chunk makes TryRead
// report that nothing is available yet.
type chunkSource struct {
	chunks [][]byte
	reads  int
	eofs   int
	closed bool
}

func (c *chunkSource) Read(p []byte) (int, error) {
	for len(c.chunks) > 0 && c.chunks[0] == nil {
		c.chunks = c.chunks[1:]
	}
	return c.TryRead(p)
}

func (c *chunkSource) TryRead(p []byte) (int, error) {
	c.reads++
	if len(c.chunks) == 0 {
		c.eofs++
		return 0, io.EOF
	}
	chunk := c.chunks[0]
	c.chunks = c.chunks[1:]
	return copy(p, chunk), nil
}

func (c *chunkSource) Close() error {
	c.closed = true
	return nil
}

func source(chunks ...string) *chunkSource {
	src := &chunkSource{}
	for _, c := range chunks {
		if c == "" {
			src.chunks = append(src.chunks, nil)
			continue
		}
		src.chunks = append(src.chunks, []byte(c))
	}
	return src
}

func TestStream_ReadLines(t *testing.T) {
	t.Parallel()

	type testCase struct {
		chunks []string
		want   []string
	}

	tests := map[string]testCase{
		"empty stream has no lines": {
			chunks: nil,
			want:   nil,
		},
		"trailing newline": {
			chunks: []string{"a\nb\n"},
			want:   []string{"a", "b"},
		},
		"missing final newline is synthesized": {
			chunks: []string{"a\nb"},
			want:   []string{"a", "b"},
		},
		"no newline at all": {
			chunks: []string{"ab"},
			want:   []string{"ab"},
		},
		"line split across reads": {
			chunks: []string{"hel", "lo\nwor", "ld\n"},
			want:   []string{"hello", "world"},
		},
		"empty lines are kept": {
			chunks: []string{"\n\nx\n"},
			want:   []string{"", "", "x"},
		},
		"carriage returns are stripped": {
			chunks: []string{"a\r\nb\r\n"},
			want:   []string{"a", "b"},
		},
		"multibyte rune split across reads": {
			chunks: []string{"caf\xc3", "\xa9\n"},
			want:   []string{"café"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := New(source(tc.chunks...), nil)
			got, err := s.ReadLines(-1)
			if err != nil {
				t.Fatalf("ReadLines() error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("ReadLines() = %q, want %q", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
			if !s.IsEOF() {
				t.Error("IsEOF() = false after reading to the end")
			}
		})
	}
}

func TestStream_EOFIsSticky(t *testing.T) {
	t.Parallel()

	src := source("only")
	s := New(src, nil)

	line, ok, err := s.ReadLine()
	if err != nil || !ok || line != "only" {
		t.Fatalf("ReadLine() = %q, %v, %v; want only, true, nil", line, ok, err)
	}
	if !s.IsEOF() {
		t.Fatal("IsEOF() = false after end of file")
	}

	reads := src.reads
	for range 3 {
		line, ok, err := s.ReadLine()
		if err != nil || ok || line != "" {
			t.Fatalf("ReadLine() at EOF = %q, %v, %v; want \"\", false, nil", line, ok, err)
		}
	}
	if src.reads != reads {
		t.Errorf("source read %d more times after end of file", src.reads-reads)
	}
	if src.eofs != 1 {
		t.Errorf("end of file consumed %d times, want 1", src.eofs)
	}
}

func TestStream_ReadLinesLimit(t *testing.T) {
	t.Parallel()

	s := New(source("1\n2\n3\n"), nil)
	got, err := s.ReadLines(2)
	if err != nil {
		t.Fatalf("ReadLines(2) error: %v", err)
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("ReadLines(2) = %q, want [1 2]", got)
	}
	rest, err := s.ReadLines(10)
	if err != nil || len(rest) != 1 || rest[0] != "3" {
		t.Fatalf("ReadLines(10) = %q, %v; want [3], nil", rest, err)
	}
}

func TestStream_ReadAvailable(t *testing.T) {
	t.Parallel()

	src := source("a\nb", "", "c\n")
	s := New(src, nil)

	got, err := s.ReadAvailable()
	if err != nil {
		t.Fatalf("ReadAvailable() error: %v", err)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("ReadAvailable() = %q, want [a]", got)
	}
	if s.IsEOF() {
		t.Fatal("IsEOF() = true with data still pending")
	}

	got, err = s.ReadAvailable()
	if err != nil {
		t.Fatalf("ReadAvailable() error: %v", err)
	}
	if len(got) != 1 || got[0] != "bc" {
		t.Fatalf("ReadAvailable() = %q, want [bc]", got)
	}
	if !s.IsEOF() {
		t.Error("IsEOF() = false after end of file")
	}
}

func TestStream_Latin1(t *testing.T) {
	t.Parallel()

	s := New(source("caf\xe9\n"), charmap.ISO8859_1)
	line, ok, err := s.ReadLine()
	if err != nil || !ok {
		t.Fatalf("ReadLine() = %q, %v, %v", line, ok, err)
	}
	if line != "café" {
		t.Errorf("ReadLine() = %q, want café", line)
	}
}

func TestStream_Close(t *testing.T) {
	t.Parallel()

	src := source("a\n")
	s := New(src, nil)

	for range 2 {
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}
	}
	if !src.closed {
		t.Error("source not closed")
	}
	if _, _, err := s.ReadLine(); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("ReadLine() after Close error = %v, want ErrStreamClosed", err)
	}
	if _, err := s.ReadAvailable(); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("ReadAvailable() after Close error = %v, want ErrStreamClosed", err)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		name    string
		wantErr bool
	}{
		"default":      {name: ""},
		"utf-8":        {name: "UTF-8"},
		"latin1 alias": {name: "latin1"},
		"windows-1252": {name: "windows-1252"},
		"shift jis":    {name: "Shift_JIS"},
		"unknown":      {name: "no-such-charset", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			enc, err := Lookup(tc.name)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownEncoding) {
					t.Fatalf("Lookup(%q) error = %v, want ErrUnknownEncoding", tc.name, err)
				}
				return
			}
			if err != nil || enc == nil {
				t.Fatalf("Lookup(%q) = %v, %v", tc.name, enc, err)
			}
		})
	}
}
