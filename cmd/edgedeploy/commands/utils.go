package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"syscall"

	appconfig "edgedeploy/cmd/edgedeploy/config"
	"edgedeploy/internal/artifacts"
	"edgedeploy/internal/deployments"
	"edgedeploy/internal/deviceconfig"
	"edgedeploy/internal/journal"
	"edgedeploy/internal/logger"
	"edgedeploy/internal/packaging"
	"edgedeploy/internal/ssh"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "Target device URI (edge://<address> or edge://<config>.yaml)")
	cmd.Flags().String("project-root", ".", "Root directory searched for companion files")
	cmd.Flags().Bool("password-prompt", false, "Prompt for the SSH password instead of reading it from config")
	_ = cmd.MarkFlagRequired("target")
}

func readPasswordSecurely(prompt string, out io.Writer) (string, error) {
	fmt.Fprintf(out, "%s", prompt)

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintf(out, "\n")

	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

// deviceConfigFromFlags resolves and validates the device configuration for
// a command invocation.
func deviceConfigFromFlags(cmd *cobra.Command) (*deviceconfig.Config, error) {
	target := cmd.Flag("target").Value.String()

	cfg, err := deviceconfig.FromURI(target)
	if err != nil {
		return nil, err
	}

	if prompt, _ := cmd.Flags().GetBool("password-prompt"); prompt {
		password, err := readPasswordSecurely("Enter SSH password: ", cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Password = password
		cfg.SSHKeyPath = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Using device config: %s", cfg.Redacted())

	return cfg, nil
}

// buildClient wires a deployment service for the target named on the command
// line. The journal is best-effort: a failure to open it never blocks the
// deployment.
func buildClient(cmd *cobra.Command) (*deployments.Service, error) {
	cfg, err := deviceConfigFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	projectRoot := cmd.Flag("project-root").Value.String()

	jrnl, err := journal.Open(appconfig.Config.JournalPath)
	if err != nil {
		logger.Warn("Operation journal unavailable: %v", err)
		jrnl = nil
	}

	return deployments.NewService(
		cfg,
		ssh.NewService(cfg),
		packaging.NewBuilder(cfg, projectRoot),
		artifacts.LocalResolver{},
		jrnl,
	), nil
}

// parseConfigPairs turns repeated key=value flags into a map.
func parseConfigPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	config := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid config entry %q, expected key=value", pair)
		}
		config[key] = value
	}

	return config, nil
}

func printJSON(cmd *cobra.Command, payload interface{}) {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}
	cmd.Printf("%s\n", encoded)
}
