package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"perl2py/internal/driver"
	"perl2py/internal/rules"
	"perl2py/internal/ui"
)

type batchOutcome struct {
	batch *driver.Batch
	err   error
}

// runWithUI runs the batch while a Bubble Tea view follows its events.
func runWithUI(ctx context.Context, title string, inputs []driver.Input, table *rules.Table, opts driver.Options) (*driver.Batch, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		opts.Observer = driver.ChannelObserver(events)
		batch, err := driver.Run(ctx, inputs, table, opts)
		outcomeCh <- batchOutcome{batch: batch, err: err}
		close(events)
	}()

	files := make([]string, len(inputs))
	for i, in := range inputs {
		files[i] = in.Path
	}
	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// не даём воркерам заблокироваться на полном канале
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.batch, uiErr
	}
	return outcome.batch, outcome.err
}
