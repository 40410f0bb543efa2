package cmd

import "github.com/spf13/cobra"

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Work with anomaly runs",
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
