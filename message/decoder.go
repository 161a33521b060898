package message

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize caps a single input line at 20 MiB, well above any sane
// Singer record but below the point where a corrupt stream exhausts memory.
const maxLineSize = 20 * 1024 * 1024

// Decoder reads Singer messages from a newline-delimited UTF-8 byte stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder wraps r in a line-oriented message decoder.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Decoder{scanner: s}
}

// Next returns the next message. Blank lines are skipped. At end of input it
// returns io.EOF; any other error is fatal to the run.
func (d *Decoder) Next() (Message, error) {
	for d.scanner.Scan() {
		d.line++
		text := d.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		return Parse([]byte(text), d.line)
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Line returns the number of the most recently read input line.
func (d *Decoder) Line() int {
	return d.line
}
