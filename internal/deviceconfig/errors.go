package deviceconfig

import "errors"

var (
	ErrInvalidScheme        = errors.New("invalid target URI scheme")
	ErrConfigFileNotFound   = errors.New("device config file not found")
	ErrMissingDeviceAddress = errors.New("device address is required")
	ErrNoAuthMethod         = errors.New("either ssh_key_path or password must be provided and no default SSH key was found")
	ErrKeyFileNotFound      = errors.New("SSH key file not found")
	ErrInvalidTimeout       = errors.New("timeout must be positive")
	ErrInvalidRetries       = errors.New("max_retries must be non-negative")
)
