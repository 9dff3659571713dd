// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"askdata/cli/internal/conversation"
	"askdata/cli/internal/display"
	"askdata/cli/internal/logging"
	"askdata/cli/internal/pipeline"
	"askdata/cli/internal/terminal"
	"askdata/cli/internal/xdg"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	chatFlags    sourceFlags
	chatShowCode bool
	chatSave     bool
)

const chatPrompt = "You: "

// chatCmd runs an interactive session over one dataset.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about a dataset interactively",
	Long: `The chat command loads a dataset once, shows a preview and then answers
questions one at a time until you type :quit.

Commands inside the session:
  :help      show this list
  :history   show the questions and explanations so far
  :code      show the program generated for the last question
  :save      write the transcript to the state directory
  :quit      leave the session`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spin := newStageSpinner(os.Stdout, true)
		ws, err := openWorkspace(cmd.Context(), chatFlags, pipeline.WithObserver(spin.Observe))
		if err != nil {
			return err
		}

		st := display.NewTerminal(os.Stdout, wrapWidth())
		printPreview(st, ws)

		sess := conversation.NewSession()
		logging.L().Debug("chat session started", zap.String("session", sess.ID))
		defer func() {
			if chatSave {
				saveTranscript(sess)
			}
		}()

		var last *pipeline.Result
		reader := bufio.NewReader(os.Stdin)
		interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
		for {
			fmt.Print(chatPrompt)
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			question := strings.TrimSpace(line)
			if interactive && question != "" {
				terminal.ClearPreviousLines(len(chatPrompt) + len(question))
				pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(chatPrompt) + question)
			}

			switch question {
			case "":
				if errors.Is(err, io.EOF) {
					fmt.Println()
					return nil
				}
				continue
			case ":quit", ":exit", ":q":
				return nil
			case ":help":
				pterm.Println(pterm.Gray(cmd.Long))
				continue
			case ":history":
				printHistory(sess)
				continue
			case ":code":
				if last == nil || last.Program == "" {
					pterm.Println(pterm.Gray("No program generated yet."))
				} else {
					printProgram(last.Program)
				}
				continue
			case ":save":
				saveTranscript(sess)
				continue
			}

			res, askErr := ws.pipe.Ask(cmd.Context(), sess, ws.ds, ws.descriptor, question, st)
			last = res
			if chatShowCode && res.Program != "" {
				printProgram(res.Program)
			}
			if askErr != nil && res.Failed() != "" {
				printFailureHint(askErr)
			} else if askErr != nil {
				pterm.Println(logging.PresentError("Error", askErr))
			}
			pterm.Println()

			if errors.Is(err, io.EOF) {
				return nil
			}
		}
	},
}

func printPreview(st display.Surface, ws *workspace) {
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Dataset: ") +
		pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(ws.ds.Name()) +
		pterm.Gray(fmt.Sprintf("  %d rows, %d columns", ws.ds.Len(), len(ws.ds.Columns()))))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Source:  ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(ws.ds.Source()))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Profile: ") + ws.profile)
	pterm.Println()
	st.Table(ws.ds.Head(3))
	pterm.Println(pterm.Gray("Ask a question about the data, or type :help."))
	pterm.Println()
}

func printHistory(sess *conversation.Session) {
	turns := sess.Log.All()
	if len(turns) == 0 {
		pterm.Println(pterm.Gray("No answered questions yet."))
		return
	}
	for _, t := range turns {
		label := pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("You: ")
		if t.Role == conversation.RoleAssistant {
			label = pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("askdata: ")
		}
		pterm.Println(label + t.Content)
	}
}

func saveTranscript(sess *conversation.Session) {
	if sess.Log.Len() == 0 {
		return
	}
	base, err := xdg.StateDir()
	if err != nil {
		pterm.Println(logging.PresentError("Could not save the transcript", err))
		return
	}
	path, err := sess.Save(filepath.Join(base, "sessions"))
	if err != nil {
		pterm.Println(logging.PresentError("Could not save the transcript", err))
		return
	}
	pterm.Println(pterm.Gray("Transcript saved to " + path))
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addSourceFlags(chatCmd, &chatFlags)
	chatCmd.Flags().BoolVar(&chatShowCode, "show-code", false, "Print each generated program")
	chatCmd.Flags().BoolVar(&chatSave, "save", false, "Save the transcript when the session ends")
}
