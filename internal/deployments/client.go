package deployments

import (
	"edgedeploy/internal/packaging"
)

// Client is the capability contract expected by the host orchestration
// framework. Predict is part of the contract even though this implementation
// never serves it.
type Client interface {
	CreateDeployment(name, modelURI, flavor string, config map[string]string) (*Result, error)
	UpdateDeployment(name, modelURI, flavor string, config map[string]string) (*Result, error)
	DeleteDeployment(name string) error
	ListDeployments() ([]Record, error)
	GetDeployment(name string) (*Record, error)
	Predict(name string, input []byte) ([]byte, error)
}

// Remote is the slice of the connection manager the orchestrator needs. A
// future transport only has to satisfy this.
type Remote interface {
	TransferFile(localPath, remotePath string) error
	CreateDeploymentDirs(name string) (string, error)
	ExtractArchive(dir, archiveName string) error
	NormalizeScriptPermissions(dir string) error
	RemoveDirectory(path string) error
	RemoveFile(path string) error
	ListDirectories(base string) ([]string, error)
	CountFiles(dir string) (int, error)
	FileExists(dir string, patterns ...string) (bool, error)
	Close() error
}

// Builder produces a deployment package and its manifest.
type Builder interface {
	Build(modelPath, deploymentName, modelLocator string, extraConfig map[string]string) (*packaging.Manifest, error)
}

// StateProber reconstructs the state of one deployment from the remote
// filesystem. Isolated so a persisted-metadata backend could replace the
// heuristic scan without touching the orchestrator.
type StateProber interface {
	QueryRemoteState(name string) (*FileStatus, error)
}
