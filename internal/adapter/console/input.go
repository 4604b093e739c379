package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// lineReader reads answers from the input. Numbers are whitespace-delimited tokens and may share
// a line; names take a whole line. It returns io.EOF once input is exhausted.
type lineReader struct {
	scanner *bufio.Scanner
	out     io.Writer
	p       palette
	pending []string // tokens left over on the last line read by readInt
}

func newLineReader(in io.Reader, out io.Writer, p palette) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(in), out: out, p: p}
}

func (r *lineReader) scanLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

// readLine prints prompt and returns the next line without its trailing newline.
// Tokens left over from a previous number are discarded.
func (r *lineReader) readLine(prompt string) (string, error) {
	r.pending = nil
	fmt.Fprint(r.out, prompt)
	return r.scanLine()
}

// readInt returns the next integer token, reading more lines as needed.
// A malformed token discards the rest of its line and prompts again.
func (r *lineReader) readInt(prompt string) (int64, error) {
	fmt.Fprint(r.out, prompt)
	for {
		for len(r.pending) == 0 {
			line, err := r.scanLine()
			if err != nil {
				return 0, err
			}
			r.pending = strings.Fields(line)
		}

		tok := r.pending[0]
		r.pending = r.pending[1:]
		n, err := strconv.ParseInt(tok, 10, 64)
		if err == nil {
			return n, nil
		}

		r.pending = nil
		fmt.Fprintln(r.out, r.p.fail("Please enter a valid number."))
		fmt.Fprint(r.out, prompt)
	}
}
