package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kristofer/smog/pkg/ingest"
	"github.com/kristofer/smog/pkg/scheduler"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "start an interactive smog read-eval-print loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		runREPL()
		return nil
	},
}

// runREPL drives pkg/ingest against one persistent scheduler/VM pair, the
// way the teacher's own REPL kept one persistent vm.VM/compiler.Compiler
// across inputs — globals (and any forked processes) stay live for the
// whole session. Line editing is github.com/peterh/liner, grounded on
// sandia-minimega's console (pkg/miniclient/client.go's Attach): history,
// Ctrl-C aborts the current line instead of the process, Ctrl-D ends the
// session.
func runREPL() {
	fmt.Printf("smog REPL v%s\n", version)
	fmt.Println("Type ':help' for help, ':quit' or ':exit' to leave")

	entry := newLogger()
	s := scheduler.New(entry)
	s.YieldEverySend = yieldEverySend
	s.MainProcess().VM.YieldEverySend = yieldEverySend

	input := liner.NewLiner()
	defer input.Close()
	input.SetCtrlCAborts(true)
	input.SetTabCompletionStyle(liner.TabPrints)

	if f, err := os.Open(historyFile); err == nil {
		input.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			input.WriteHistory(f)
			f.Close()
		}
	}()

	var buf strings.Builder
	for {
		prompt := "smog> "
		if buf.Len() > 0 {
			prompt = "....> "
		}
		line, err := input.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			buf.Reset()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "input error: %v\n", err)
			break
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 {
			switch trimmed {
			case ":quit", ":exit":
				return
			case ":help":
				printREPLHelp()
				continue
			case "":
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if !strings.HasSuffix(trimmed, ".") {
			continue
		}

		input.AppendHistory(strings.TrimSpace(buf.String()))
		evalREPL(s, buf.String())
		buf.Reset()
	}
}

// evalREPL evaluates one chunk of input and prints its result, matching
// spec §6's doit semantics for a single REPL turn: on error, print the
// reported error string and return (statements of the chunk that ran
// before the error keep their effects); on success, print the
// last statement's value the way a Smalltalk workspace echoes "it".
func evalREPL(s *scheduler.Scheduler, source string) {
	v, errStr := ingest.DoIt(s.MainProcess().VM, source)
	if errStr != "" {
		fmt.Fprintln(os.Stderr, errStr)
		return
	}
	if err := s.RunToCompletion(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	fmt.Println(v.ToString())
}

func printREPLHelp() {
	fmt.Println("  :help          show this help")
	fmt.Println("  :quit, :exit   leave the REPL")
	fmt.Println("  end a statement with '.' to evaluate it")
}
