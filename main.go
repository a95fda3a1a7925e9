package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kcl-lang/kcl-sub002/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "kclsema [subcommand]",
	Short:        "semantic analysis for KCL programs",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
}
