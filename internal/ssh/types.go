package ssh

import "time"

// CommandResult captures one completed remote command. A non-zero exit code
// is represented here, never as a Go error.
type CommandResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the remote command exited with status 0.
func (r *CommandResult) Success() bool {
	return r.ExitCode == 0
}

// HealthStatus is the outcome of the combined port/HTTP probe against a
// service on the device.
type HealthStatus struct {
	PortListening  bool          `json:"port_listening"`
	HTTPResponsive bool          `json:"http_responsive"`
	ResponseTime   time.Duration `json:"response_time"`
	Timestamp      time.Time     `json:"timestamp"`
	Healthy        bool          `json:"healthy"`
}
