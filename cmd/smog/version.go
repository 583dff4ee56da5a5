package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the smog version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("smog version %s\n", version)
		return nil
	},
}
