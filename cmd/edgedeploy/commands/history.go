package commands

import (
	appconfig "edgedeploy/cmd/edgedeploy/config"
	"edgedeploy/internal/journal"

	"github.com/spf13/cobra"
)

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent lifecycle operations from the local journal",
	Long:  `List recent create/update/delete step outcomes recorded locally. The journal is advisory; actual deployment state always comes from the device itself (see list/get).`,
	Run: func(cmd *cobra.Command, _ []string) {
		jrnl, err := journal.Open(appconfig.Config.JournalPath)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		defer jrnl.Close()

		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := jrnl.Recent(limit)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}

		printJSON(cmd, entries)
	},
}

func init() {
	HistoryCmd.Flags().Int("limit", 20, "Maximum number of entries to show")
}
