package render

import (
	"mvdan.cc/gofumpt/format"
)

// FormatGo formats Go source in-memory using gofumpt. On failure the
// original buffer is returned together with the error.
func FormatGo(src []byte) ([]byte, error) {
	formatted, err := format.Source(src, format.Options{})
	if err != nil {
		return src, err
	}
	return formatted, nil
}
