package main

import (
	"fmt"
	"os"

	"github.com/kristofer/smog/pkg/ingest"
	"github.com/kristofer/smog/pkg/scheduler"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "run a smog script to completion, including any forked processes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		entry := newLogger()
		s := scheduler.New(entry)
		s.YieldEverySend = yieldEverySend
		s.MainProcess().VM.YieldEverySend = yieldEverySend

		// The main process's VM runs the top-level script; any
		// `Processor fork:` calls it makes become additional ready
		// processes that RunToCompletion drains alongside it (spec §4.7 —
		// a script is itself just the first process a scheduler runs).
		_, errStr := ingest.EvalStatements(s.MainProcess().VM, string(data))
		if errStr != "" {
			fmt.Fprintln(os.Stderr, errStr)
			os.Exit(1)
		}

		if err := s.RunToCompletion(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return nil
	},
}
