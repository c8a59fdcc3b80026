package commands

import (
	appconfig "edgedeploy/cmd/edgedeploy/config"
	"edgedeploy/internal/ssh"

	"github.com/spf13/cobra"
)

var HealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a service port and /health endpoint on a device",
	Long:  `Check whether anything on the device listens on the given port and whether http://<device>:<port>/health answers 200. Purely diagnostic; edgedeploy never starts a service itself.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, err := deviceConfigFromFlags(cmd)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}

		port, _ := cmd.Flags().GetInt("port")

		service := ssh.NewService(cfg)
		defer service.Close()

		printJSON(cmd, service.CheckServiceHealth(port))
	},
}

func init() {
	addTargetFlags(HealthCmd)
	HealthCmd.Flags().Int("port", appconfig.Config.HealthPort, "Service port to probe")
}
