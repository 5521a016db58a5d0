package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"natsu/internal/buildpipeline"
	"natsu/internal/ui"
)

type translateOutcome struct {
	result buildpipeline.TranslateResult
	err    error
}

// runTranslateWithUI runs the pipeline in the background and renders its
// events until the event channel closes.
func runTranslateWithUI(ctx context.Context, title string, req *buildpipeline.TranslateRequest) (buildpipeline.TranslateResult, error) {
	if req == nil {
		return buildpipeline.TranslateResult{}, fmt.Errorf("missing translate request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan translateOutcome, 1)

	files := req.Files
	if len(files) != len(req.Inputs) {
		files = req.Inputs
	}
	go func() {
		reqCopy := *req
		reqCopy.Files = files
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Translate(ctx, &reqCopy)
		outcomeCh <- translateOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
