package main

import (
	"fmt"
	"os"

	"github.com/kristofer/smog/pkg/ingest"
	"github.com/kristofer/smog/pkg/scheduler"
	"github.com/spf13/cobra"
)

var doitCmd = &cobra.Command{
	Use:   "doit <file>",
	Short: "evaluate a script and print only its last statement's value",
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

		v, errStr := ingest.DoIt(s.MainProcess().VM, string(data))
		if errStr != "" {
			fmt.Fprintln(os.Stderr, errStr)
			os.Exit(1)
		}
		if err := s.RunToCompletion(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Println(v.ToString())
		return nil
	},
}
