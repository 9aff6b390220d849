package textstream

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/giantswarm/procmux/internal/syserr"
)

// DefaultEncoding is used when no encoding is named.
const DefaultEncoding = "UTF-8"

// ErrUnknownEncoding is returned for an encoding name that is not in the IANA
// registry or has no decoder.
const ErrUnknownEncoding = syserr.Error("unknown encoding")

// Lookup returns the encoding registered under the IANA name or alias. An
// empty name selects UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownEncoding, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w %q: no decoder available", ErrUnknownEncoding, name)
	}
	return enc, nil
}
