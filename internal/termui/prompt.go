package termui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt asks yes/no questions on a line-oriented terminal.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt reads answers from in. Share in with any other line reader on
// the same input.
func NewPrompt(in *bufio.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

// Confirm prints prompt and reports whether the answer was yes. End of input
// counts as no.
func (p *Prompt) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
