// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"askdata/cli/internal/llm"
	"askdata/cli/internal/logging"
	"askdata/cli/internal/pipeline"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// stageLabels are the pipeline states that wait on the completion service.
var stageLabels = map[pipeline.State]string{
	pipeline.StatePromptBuilt:          "writing a program for your question",
	pipeline.StateExplanationRequested: "explaining the result",
}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The returned function stops the spinner and
// clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}

// stageSpinner shows a spinner while the pipeline waits on the completion
// service. Observe is passed to pipeline.WithObserver.
type stageSpinner struct {
	w       io.Writer
	enabled bool

	mu   sync.Mutex
	stop func()
}

// newStageSpinner returns a spinner that only animates on a terminal.
func newStageSpinner(w io.Writer, enabled bool) *stageSpinner {
	return &stageSpinner{w: w, enabled: enabled && isTerminal(os.Stdout)}
}

// Observe stops the current animation and starts a new one for waiting states.
func (s *stageSpinner) Observe(state pipeline.State) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
		cursor.Show()
	}
	if label, ok := stageLabels[state]; ok {
		cursor.Hide()
		s.stop = startInlineSpinner(s.w, label, spinnerFrames, 120*time.Millisecond)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printFailureHint prints guidance below a failure the pipeline already
// reported through the surface.
func printFailureHint(err error) {
	var te *llm.TransportError
	if errors.As(err, &te) && te.StatusCode == 0 && te.Err != nil && !errors.Is(te.Err, context.DeadlineExceeded) {
		pterm.Println(te.Explain("completion service"))
		return
	}
	pterm.Println(pterm.Gray(strings.TrimRight(logging.Hint(err.Error()), "\n")))
}
