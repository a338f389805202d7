package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWithProgress runs fn while a spinner is drawn on stderr. summary, when
// non-nil, renders the result line. In non-interactive mode fn runs without
// any decoration. The spinner never touches stdout.
func RunWithProgress[T any](ctx context.Context, message string, summary func(T) string, fn func(context.Context) (T, error)) (T, error) {
	if !IsInteractive() {
		return fn(ctx)
	}
	return runWithProgress(ctx, os.Stderr, nil, message, summary, fn)
}

func runWithProgress[T any](ctx context.Context, out io.Writer, in io.Reader, message string, summary func(T) string, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	p := tea.NewProgram(newProgressModel(message), opts...)

	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
		if err != nil {
			p.Send(finishedMsg{err: err})
			return
		}
		text := "done"
		if summary != nil {
			text = summary(v)
		}
		p.Send(finishedMsg{summary: text})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(out, "progress display failed: %v\n", err)
	}

	r := <-done
	return r.value, r.err
}
