package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// LinePrompter answers spell prompts from the same input the console reads.
type LinePrompter struct {
	in   *bufio.Scanner
	out  io.Writer
	book *spell.Book
}

// NewLinePrompter returns a LinePrompter. book supplies display names and
// may be nil.
func NewLinePrompter(in *bufio.Scanner, out io.Writer, book *spell.Book) *LinePrompter {
	return &LinePrompter{in: in, out: out, book: book}
}

// ChooseSpell lists spells by slot letter and reads a letter or slot number.
// Anything else, including end of input, backs out.
func (p *LinePrompter) ChooseSpell(prompt string, spells []spell.ID) (int, bool) {
	for i, id := range spells {
		fmt.Fprintf(p.out, "  %c - %s\n", slotLetter(i), p.name(id))
	}
	fmt.Fprintf(p.out, "%s ", prompt)
	answer, ok := p.read()
	if !ok || answer == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		return n - 1, n >= 1 && n <= len(spells)
	}
	for i := range spells {
		if string(slotLetter(i)) == answer {
			return i, true
		}
	}
	return 0, false
}

// Confirm asks a yes/no question. Only "y" or "yes" confirms.
func (p *LinePrompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s (y/N) ", prompt)
	answer, ok := p.read()
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (p *LinePrompter) read() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *LinePrompter) name(id spell.ID) string {
	if p.book != nil {
		if def, ok := p.book.Get(id); ok {
			return def.Name
		}
	}
	return id.String()
}

// WriterSink prints game messages one per line. Warnings are marked so a
// programmer error is not mistaken for narration.
type WriterSink struct {
	out io.Writer
}

// NewWriterSink returns a Sink printing to out.
func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

// Say prints the message.
func (s *WriterSink) Say(ch message.Channel, text string) {
	switch ch {
	case message.Warn:
		fmt.Fprintf(s.out, "!! %s\n", text)
	case message.Sound:
		fmt.Fprintf(s.out, "~ %s\n", text)
	default:
		fmt.Fprintln(s.out, text)
	}
}
