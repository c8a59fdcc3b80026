package ssh

import "errors"

// Connection errors
var (
	ErrFailedToCreateAuth = errors.New("failed to create auth")
	ErrConnectionFailed   = errors.New("SSH connection failed")
	ErrNotConnected       = errors.New("SSH connection not established")
)

// Command and transfer errors
var (
	ErrCommandTransport    = errors.New("remote command transport failure")
	ErrTransferFailed      = errors.New("file transfer failed")
	ErrRemoteCommandFailed = errors.New("remote command failed")
)
