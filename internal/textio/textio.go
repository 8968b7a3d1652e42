// Package textio reads payload text from files and streams. A byte-order mark
// selects UTF-8, UTF-16LE or UTF-16BE decoding; without one the input is
// taken as UTF-8 and invalid sequences become U+FFFD.
package textio

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StdinName is the path that selects standard input.
const StdinName = "-"

// ReadAll decodes everything from r into a UTF-8 string, dropping any BOM.
func ReadAll(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("decoding input: %w", err)
	}
	return string(data), nil
}

// ReadFile reads path, or stdin when path is StdinName or empty.
func ReadFile(path string, stdin io.Reader) (string, error) {
	if path == "" || path == StdinName {
		return ReadAll(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}
