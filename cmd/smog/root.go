// Command smog is the CLI front end over pkg/ingest, pkg/interp, and
// pkg/scheduler: it replaces the teacher's hand-rolled `switch os.Args[1]`
// bytecode toolchain (run/compile/disassemble against pkg/bytecode) with a
// cobra command tree over the work-queue interpreter, per SPEC_FULL.md
// §2.3/§3.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.5.0"

var (
	verbose        bool
	yieldEverySend bool
	historyFile    string

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:           "smog",
	Short:         "smog is a class-based, message-passing scripting language",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level scheduler/VM tracing")
	rootCmd.PersistentFlags().BoolVar(&yieldEverySend, "yield-every-send", false, "yield after every message send (debug: maximum-granularity round-robin interleaving)")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history", defaultHistoryPath(), "REPL history file path")

	rootCmd.AddCommand(runCmd, replCmd, doitCmd, versionCmd)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smog_history"
	}
	return home + "/.smog_history"
}

func newLogger() *logrus.Entry {
	log.Out = os.Stderr
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return logrus.NewEntry(log)
}

// Execute runs the command tree and exits the process with status 1 if it
// returns an error; main's only job is to call this.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
