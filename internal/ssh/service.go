// Package ssh maintains a single reusable SSH session to one edge device and
// exposes command execution and file transfer on top of it. A Service is
// owned by exactly one caller and is not safe for concurrent use.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"edgedeploy/internal/deviceconfig"
	"edgedeploy/internal/logger"

	"github.com/codeGROOVE-dev/retry"
	"github.com/melbahja/goph"
	"golang.org/x/crypto/ssh"
)

const (
	defaultPort    = 22
	probeTimeout   = 5 * time.Second
	initialBackoff = 1 * time.Second
	maxBackoff     = 10 * time.Second
)

// Service wraps one lazily-established goph client. A dead session is
// detected by a probe command and transparently replaced on the next use.
type Service struct {
	client *goph.Client
	config *deviceconfig.Config
}

func NewService(config *deviceconfig.Config) *Service {
	return &Service{config: config}
}

func (s *Service) timeout() time.Duration {
	return time.Duration(s.config.TimeoutSeconds) * time.Second
}

// Connect returns once a usable session exists. A cached session is probed
// with a trivial command first; on probe failure it is discarded and a new
// one is dialed. Dialing is retried with backoff up to the configured retry
// budget.
func (s *Service) Connect() error {
	if s.client != nil {
		if _, err := s.runCommand("echo alive", probeTimeout); err == nil {
			return nil
		}
		logger.Warn("Cached SSH session to %s is dead, reconnecting", s.config.DeviceAddress)
		_ = s.client.Close()
		s.client = nil
	}

	attempts := uint(s.config.MaxRetries) + 1

	err := retry.Do(func() error {
		return s.dial()
	}, retry.Attempts(attempts), retry.Delay(initialBackoff), retry.MaxDelay(maxBackoff))

	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	logger.Info("SSH connection to %s established", s.config.DeviceAddress)
	return nil
}

func (s *Service) dial() error {
	authMethods, err := s.authMethods()
	if err != nil {
		return err
	}

	sshConfig := &ssh.ClientConfig{
		User:            s.config.Username,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         s.timeout(),
	}

	// A device address may carry an explicit port; otherwise the standard
	// SSH port is assumed.
	hostPort := s.config.DeviceAddress
	if _, _, err := net.SplitHostPort(hostPort); err != nil {
		hostPort = net.JoinHostPort(hostPort, fmt.Sprintf("%d", defaultPort))
	}

	conn, err := net.DialTimeout("tcp", hostPort, sshConfig.Timeout)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", hostPort, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, hostPort, sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to authenticate to %s: %w", hostPort, err)
	}

	s.client = &goph.Client{Client: ssh.NewClient(sshConn, chans, reqs)}
	return nil
}

func (s *Service) authMethods() ([]ssh.AuthMethod, error) {
	// Key-based auth wins over password when both are configured.
	if s.config.SSHKeyPath != "" {
		auth, err := goph.Key(s.config.SSHKeyPath, s.config.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToCreateAuth, err)
		}
		return auth, nil
	}

	if s.config.Password != "" {
		return []ssh.AuthMethod{ssh.Password(s.config.Password)}, nil
	}

	return nil, ErrFailedToCreateAuth
}

// ExecuteCommand runs one shell command on the device and returns its
// captured output and exit status. A non-zero exit status is reported in the
// result, not as an error; only transport failures (broken session, timeout)
// produce an error. A timeout <= 0 falls back to the configured default.
func (s *Service) ExecuteCommand(command string, timeout time.Duration) (*CommandResult, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = s.timeout()
	}

	logger.Debug("Executing remote command: %s", command)

	result, err := s.runCommand(command, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCommandTransport, command, err)
	}

	if !result.Success() {
		logger.Warn("Remote command exited %d: %s", result.ExitCode, result.Stderr)
	}

	return result, nil
}

func (s *Service) runCommand(command string, timeout time.Duration) (*CommandResult, error) {
	if s.client == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd, err := s.client.CommandContext(ctx, command)
	if err != nil {
		return nil, err
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	result := &CommandResult{
		Command: command,
		Stdout:  strings.TrimSpace(stdout.String()),
		Stderr:  strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitStatus()
	}

	return result, nil
}

// TransferFile streams a local file to the device, creating the remote
// parent directory first. Failures after a live connection wrap
// ErrTransferFailed, distinct from connection errors.
func (s *Service) TransferFile(localPath, remotePath string) error {
	if err := s.Connect(); err != nil {
		return err
	}

	remoteDir := remoteParent(remotePath)
	if _, err := s.ExecuteCommand(mkdirCmd(remoteDir), 0); err != nil {
		return err
	}

	logger.Info("Transferring %s to %s:%s", localPath, s.config.DeviceAddress, remotePath)

	if err := s.client.Upload(localPath, remotePath); err != nil {
		return fmt.Errorf("%w: %s -> %s: %v", ErrTransferFailed, localPath, remotePath, err)
	}

	return nil
}

// Close is idempotent and safe on a never-connected Service.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.client = nil

	logger.Info("SSH connection to %s closed", s.config.DeviceAddress)
	return err
}

func remoteParent(remotePath string) string {
	idx := strings.LastIndex(remotePath, "/")
	if idx <= 0 {
		return "/"
	}
	return remotePath[:idx]
}
