package ssh

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"edgedeploy/internal/logger"
)

// Derived operations. Everything here is built purely from ExecuteCommand
// and TransferFile and carries no extra state.

var deploymentSubdirs = []string{"models", "data", "scripts", "docker"}

const healthHTTPTimeout = 10 * time.Second

// CreateDeploymentDirs creates <base>/<name> with the fixed subtree layout
// and returns the deployment path.
func (s *Service) CreateDeploymentDirs(name string) (string, error) {
	deploymentPath := path.Join(s.config.BasePath, name)

	logger.Info("Creating deployment directory %s", deploymentPath)

	dirs := []string{deploymentPath}
	for _, subdir := range deploymentSubdirs {
		dirs = append(dirs, path.Join(deploymentPath, subdir))
	}

	for _, dir := range dirs {
		result, err := s.ExecuteCommand(mkdirCmd(dir), 0)
		if err != nil {
			return "", err
		}
		if !result.Success() {
			return "", fmt.Errorf("%w: mkdir %s: %s", ErrRemoteCommandFailed, dir, result.Stderr)
		}
	}

	return deploymentPath, nil
}

// ExtractArchive unpacks a gzip tarball that already sits inside dir.
func (s *Service) ExtractArchive(dir, archiveName string) error {
	logger.Info("Extracting %s in %s", archiveName, dir)

	result, err := s.ExecuteCommand(extractCmd(dir, archiveName), 0)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%w: extraction: %s", ErrRemoteCommandFailed, result.Stderr)
	}

	return nil
}

// NormalizeScriptPermissions sets the executable bit on shell and Python
// scripts below dir. Failures are tolerated; the files still run through an
// interpreter.
func (s *Service) NormalizeScriptPermissions(dir string) error {
	result, err := s.ExecuteCommand(chmodScriptsCmd(dir), 0)
	if err != nil {
		return err
	}
	if !result.Success() {
		logger.Warn("chmod on scripts in %s exited %d: %s", dir, result.ExitCode, result.Stderr)
	}
	return nil
}

// RemoveDirectory removes path recursively. Removing a path that does not
// exist succeeds.
func (s *Service) RemoveDirectory(remotePath string) error {
	result, err := s.ExecuteCommand(removeDirCmd(remotePath), 0)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%w: rm -rf %s: %s", ErrRemoteCommandFailed, remotePath, result.Stderr)
	}
	return nil
}

// RemoveFile removes a single remote file, tolerating absence.
func (s *Service) RemoveFile(remotePath string) error {
	result, err := s.ExecuteCommand(removeFileCmd(remotePath), 0)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%w: rm -f %s: %s", ErrRemoteCommandFailed, remotePath, result.Stderr)
	}
	return nil
}

// ListDirectories returns the immediate subdirectories of base, excluding
// base itself.
func (s *Service) ListDirectories(base string) ([]string, error) {
	result, err := s.ExecuteCommand(listDirsCmd(base), 0)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, fmt.Errorf("%w: find %s: %s", ErrRemoteCommandFailed, base, result.Stderr)
	}

	var dirs []string
	for _, line := range strings.Split(result.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			dirs = append(dirs, line)
		}
	}

	return dirs, nil
}

// CountFiles counts regular files below dir.
func (s *Service) CountFiles(dir string) (int, error) {
	result, err := s.ExecuteCommand(countFilesCmd(dir), 0)
	if err != nil {
		return 0, err
	}
	if !result.Success() {
		return 0, fmt.Errorf("%w: count in %s: %s", ErrRemoteCommandFailed, dir, result.Stderr)
	}

	count, err := strconv.Atoi(strings.TrimSpace(result.Stdout))
	if err != nil {
		return 0, fmt.Errorf("unexpected wc output %q: %w", result.Stdout, err)
	}

	return count, nil
}

// FileExists reports whether any file below dir matches one of the glob
// patterns.
func (s *Service) FileExists(dir string, patterns ...string) (bool, error) {
	result, err := s.ExecuteCommand(findFirstCmd(dir, patterns...), 0)
	if err != nil {
		return false, err
	}

	return result.Success() && strings.TrimSpace(result.Stdout) != "", nil
}

// CheckServiceHealth combines a listening-port check on the device with an
// HTTP GET against its /health endpoint.
func (s *Service) CheckServiceHealth(port int) *HealthStatus {
	status := &HealthStatus{Timestamp: time.Now()}

	result, err := s.ExecuteCommand(portListeningCmd(port), 0)
	if err != nil {
		logger.Error("Port probe failed: %v", err)
		return status
	}
	status.PortListening = result.Success() && strings.TrimSpace(result.Stdout) != ""

	healthURL := fmt.Sprintf("http://%s:%d/health", s.config.DeviceAddress, port)
	client := &http.Client{Timeout: healthHTTPTimeout}

	start := time.Now()
	resp, err := client.Get(healthURL)
	if err == nil {
		status.ResponseTime = time.Since(start)
		status.HTTPResponsive = resp.StatusCode == http.StatusOK
		resp.Body.Close()
	}

	status.Healthy = status.PortListening && status.HTTPResponsive
	return status
}
