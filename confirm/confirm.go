// Package confirm implements the confirmation gate shown before an unfiltered
// run that would query every service in every region.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks whether to proceed with the work described by summary.
type Confirmer interface {
	Confirm(ctx context.Context, summary string) (bool, error)
}

// Prompt asks on a terminal-like pair of streams. The question goes to Out
// (stderr in the CLI) and one answer line is read from In.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// NewPrompt creates a Prompt reading answers from in and writing the question to out
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{In: in, Out: out}
}

// Confirm writes summary and the question, then reads one line. Only "y" or
// "yes" (any case) confirm; EOF is a decline.
func (p *Prompt) Confirm(ctx context.Context, summary string) (bool, error) {
	if summary != "" {
		if _, err := fmt.Fprintln(p.Out, summary); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
	if _, err := fmt.Fprint(p.Out, "Are you sure you want to continue? (y/n) "); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-answers:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		return IsYes(a.line), nil
	}
}

// IsYes reports whether answer is an affirmative reply.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Always answers every confirmation with the fixed value without prompting.
type Always bool

// Confirm returns the fixed answer
func (a Always) Confirm(ctx context.Context, summary string) (bool, error) {
	return bool(a), nil
}
