// Package prompt implements the interactive input collector. It reads
// from an injected reader and writes to an injected writer so the
// prompts are testable without a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter collects operator input line by line.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading from in and printing to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// String prompts for a value and returns it verbatim. No validation is
// performed; empty input is passed through.
func (p *Prompter) String(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// StringDefault prompts for a value and substitutes def when the
// operator enters nothing.
func (p *Prompter) StringDefault(label, def string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	v, err := p.readLine()
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Confirm prompts with a y/n question. Only "y" or "Y" counts as
// affirmative; everything else is a decline.
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n): ", label)
	v, err := p.readLine()
	if err != nil {
		return false, err
	}
	return v == "y" || v == "Y", nil
}
