package commands

import (
	"edgedeploy/internal/deployments"

	"github.com/spf13/cobra"
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Deploy a model bundle to a device",
	Long:  `Download the model artifact, package it with the companion files, transfer the package to the device and extract it there.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runLifecycle(cmd, func(client *deployments.Service, name, modelURI, flavor string, config map[string]string) (*deployments.Result, error) {
			return client.CreateDeployment(name, modelURI, flavor, config)
		})
	},
}

var UpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace an existing deployment with a new model bundle",
	Long:  `Remove the deployment directory on the device (best-effort) and recreate it with the new bundle. Not atomic: a failure mid-update leaves no deployment behind.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runLifecycle(cmd, func(client *deployments.Service, name, modelURI, flavor string, config map[string]string) (*deployments.Result, error) {
			return client.UpdateDeployment(name, modelURI, flavor, config)
		})
	},
}

var DeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a deployment from a device",
	Run: func(cmd *cobra.Command, _ []string) {
		client, err := buildClient(cmd)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		defer client.Close()

		name := cmd.Flag("name").Value.String()

		if err := client.DeleteDeployment(name); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}

		cmd.Printf("Deployment %q deleted\n", name)
	},
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployments present on a device",
	Run: func(cmd *cobra.Command, _ []string) {
		client, err := buildClient(cmd)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		defer client.Close()

		records, err := client.ListDeployments()
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}

		printJSON(cmd, records)
	},
}

var GetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one deployment with a fresh file-presence probe",
	Run: func(cmd *cobra.Command, _ []string) {
		client, err := buildClient(cmd)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		defer client.Close()

		record, err := client.GetDeployment(cmd.Flag("name").Value.String())
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}

		printJSON(cmd, record)
	},
}

var PredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Unsupported: edgedeploy only transfers files",
	Run: func(cmd *cobra.Command, _ []string) {
		client, err := buildClient(cmd)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		defer client.Close()

		if _, err := client.Predict(cmd.Flag("name").Value.String(), nil); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	},
}

type lifecycleFunc func(client *deployments.Service, name, modelURI, flavor string, config map[string]string) (*deployments.Result, error)

func runLifecycle(cmd *cobra.Command, run lifecycleFunc) {
	configPairs, _ := cmd.Flags().GetStringArray("config")
	config, err := parseConfigPairs(configPairs)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}

	client, err := buildClient(cmd)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}
	defer client.Close()

	result, err := run(
		client,
		cmd.Flag("name").Value.String(),
		cmd.Flag("model-uri").Value.String(),
		cmd.Flag("flavor").Value.String(),
		config,
	)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}

	printJSON(cmd, result)
}

func init() {
	for _, cmd := range []*cobra.Command{CreateCmd, UpdateCmd} {
		addTargetFlags(cmd)
		cmd.Flags().String("name", "", "Deployment name")
		cmd.Flags().StringP("model-uri", "m", "", "Model artifact locator (path or file:// URI)")
		cmd.Flags().String("flavor", "", "Model flavor recorded in the result")
		cmd.Flags().StringArray("config", nil, "Extra configuration entries (key=value, repeatable)")
		_ = cmd.MarkFlagRequired("name")
		_ = cmd.MarkFlagRequired("model-uri")
	}

	for _, cmd := range []*cobra.Command{DeleteCmd, GetCmd, PredictCmd} {
		addTargetFlags(cmd)
		cmd.Flags().String("name", "", "Deployment name")
		_ = cmd.MarkFlagRequired("name")
	}

	addTargetFlags(ListCmd)
}
