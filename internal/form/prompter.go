package form

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jwalitptl/liver-report/internal/model"
)

// Prompter fills the form interactively on a terminal. Each line read is
// one Enter press on the focused control.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	fields  []model.Field
	nav     *Navigator
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	names := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		names[i] = f.Name
	}
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
		fields:  model.Fields,
		nav:     NewNavigator(names),
	}
}

// Fill walks every control once. An empty line keeps the default value.
// It returns when Enter is pressed on the last control; submitting is up
// to the caller.
func (p *Prompter) Fill(ctx context.Context, defaults model.FormInput) (model.FormInput, error) {
	values := make(model.FormInput, len(p.fields))
	for k, v := range defaults {
		values[k] = v
	}

	focus := 0
	for {
		if err := ctx.Err(); err != nil {
			return values, err
		}

		field := p.fields[focus]
		if def := values[field.Name]; def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", field.Label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", field.Label)
		}

		line, err := p.readLine()
		if err != nil {
			return values, err
		}
		if line != "" {
			values[field.Name] = line
		}

		next, _ := p.nav.HandleKey(focus, KeyEnter)
		if next == focus {
			return values, nil
		}
		focus = next
	}
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *Prompter) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(p.scanner.Text(), "\r"), nil
}
