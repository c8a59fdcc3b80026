package commands

import "github.com/spf13/cobra"

// Register attaches all edgedeploy subcommands to the root command.
func Register(rootCmd *cobra.Command) {
	rootCmd.AddCommand(CreateCmd)
	rootCmd.AddCommand(UpdateCmd)
	rootCmd.AddCommand(DeleteCmd)
	rootCmd.AddCommand(ListCmd)
	rootCmd.AddCommand(GetCmd)
	rootCmd.AddCommand(PredictCmd)
	rootCmd.AddCommand(HealthCmd)
	rootCmd.AddCommand(HistoryCmd)
}
