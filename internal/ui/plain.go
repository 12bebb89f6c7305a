package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxPlainAttempts is how many invalid answers the plain prompt accepts
// before giving up.
const maxPlainAttempts = 3

// PlainPicker prints a numbered list and reads the choice from a line of
// input (for pipes and CI). An empty line, "q" or EOF cancels.
type PlainPicker struct {
	in          io.Reader
	out         io.Writer
	placeholder string
}

// NewPlainPicker creates a plain text picker.
func NewPlainPicker(cfg PickConfig) *PlainPicker {
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &PlainPicker{
		in:          cfg.Input,
		out:         cfg.Output,
		placeholder: placeholder,
	}
}

type lineResult struct {
	line string
	err  error
}

// Pick implements Picker.
func (p *PlainPicker) Pick(ctx context.Context, options []string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, nil
	}
	if p.in == nil {
		return "", false, fmt.Errorf("no input to read the choice from")
	}

	_, _ = fmt.Fprintf(p.out, "%s:\n", p.placeholder)
	width := len(strconv.Itoa(len(options)))
	for i, opt := range options {
		_, _ = fmt.Fprintf(p.out, "  %*d) %s\n", width, i+1, opt)
	}

	lines := make(chan lineResult, 1)
	reader := bufio.NewReader(p.in)
	readLine := func() {
		line, err := reader.ReadString('\n')
		lines <- lineResult{line: line, err: err}
	}

	for attempt := 0; attempt < maxPlainAttempts; attempt++ {
		_, _ = fmt.Fprintf(p.out, "choice [1-%d, empty to cancel]: ", len(options))

		go readLine()

		var res lineResult
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(p.out)
			return "", false, ctx.Err()
		case res = <-lines:
		}

		answer := strings.TrimSpace(res.line)
		if res.err != nil && answer == "" {
			if res.err == io.EOF {
				_, _ = fmt.Fprintln(p.out)
				return "", false, nil
			}
			return "", false, fmt.Errorf("read choice: %w", res.err)
		}

		if answer == "" || strings.EqualFold(answer, "q") {
			return "", false, nil
		}

		if choice, ok := resolveAnswer(answer, options); ok {
			return choice, true, nil
		}
		_, _ = fmt.Fprintf(p.out, "invalid choice %q\n", answer)
	}

	return "", false, fmt.Errorf("no valid choice after %d attempts", maxPlainAttempts)
}

// resolveAnswer accepts a 1-based index or an exact option.
func resolveAnswer(answer string, options []string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	return "", false
}
