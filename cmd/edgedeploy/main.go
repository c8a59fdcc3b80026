package main

import (
	"os"

	"edgedeploy/cmd/edgedeploy/commands"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edgedeploy",
	Short: "Deploy model bundles to edge devices over SSH",
	Long: `edgedeploy packages a trained model together with its companion runtime
files and places the bundle on a remote edge device over SSH. It only
transfers files: nothing is started or supervised on the device.

Target URI formats:

  edge://10.0.0.5              # bare device address, default configuration
  edge://lab_device.yaml       # device config file (searched in the
                               # deployment_configs directory, the current
                               # directory, then as an absolute path)

Examples:

  edgedeploy create -t edge://10.0.0.5 --name demo --model-uri ./model.bin
  edgedeploy list   -t edge://lab_device.yaml
  edgedeploy delete -t edge://10.0.0.5 --name demo
`,
}

func main() {
	commands.Register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
