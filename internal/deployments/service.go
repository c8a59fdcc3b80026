// Package deployments sequences the deployment lifecycle against one edge
// device: resolve the model, build the package, transfer, extract, verify,
// clean up. Deployment state is never persisted; every query rescans the
// remote filesystem.
package deployments

import (
	"fmt"
	"os"
	"path"
	"time"

	appconfig "edgedeploy/cmd/edgedeploy/config"
	"edgedeploy/internal/artifacts"
	"edgedeploy/internal/deviceconfig"
	"edgedeploy/internal/journal"
	"edgedeploy/internal/logger"
)

// Service implements Client for one target device. Not safe for concurrent
// use; callers needing parallelism instantiate one Service (and hence one
// connection) per device.
type Service struct {
	config   *deviceconfig.Config
	remote   Remote
	builder  Builder
	resolver artifacts.Resolver
	journal  *journal.Journal
	prober   StateProber
}

func NewService(config *deviceconfig.Config, remote Remote, builder Builder, resolver artifacts.Resolver, jrnl *journal.Journal) *Service {
	return &Service{
		config:   config,
		remote:   remote,
		builder:  builder,
		resolver: resolver,
		journal:  jrnl,
		prober:   &remoteProber{remote: remote, config: config},
	}
}

// CreateDeployment runs the full lifecycle for a new deployment. On failure
// at any step the partially-created remote directory is removed best-effort
// and the original failure is surfaced.
func (s *Service) CreateDeployment(name, modelURI, flavor string, config map[string]string) (*Result, error) {
	logger.Info("Starting deployment %q of %s to %s", name, modelURI, s.config.DeviceAddress)
	s.journalStep(name, "create", StepInitiated, "ok", modelURI)

	scratchDir, err := os.MkdirTemp("", "edgedeploy_model_")
	if err != nil {
		return nil, s.fail(name, "create", StepInitiated, err)
	}
	defer os.RemoveAll(scratchDir)

	modelPath, err := s.resolver.Download(modelURI, scratchDir)
	if err != nil {
		return nil, s.fail(name, "create", StepModelDownloaded, err)
	}
	s.journalStep(name, "create", StepModelDownloaded, "ok", modelPath)

	manifest, err := s.builder.Build(modelPath, name, modelURI, config)
	if err != nil {
		return nil, s.fail(name, "create", StepPackaged, err)
	}
	defer os.Remove(manifest.ArchivePath)
	s.journalStep(name, "create", StepPackaged, "ok", manifest.ArchivePath)

	deploymentPath, err := s.remote.CreateDeploymentDirs(name)
	if err != nil {
		return nil, s.fail(name, "create", StepTransferred, err)
	}

	remoteArchive := path.Join(deploymentPath, appconfig.Config.RemoteArchiveName)
	if err := s.remote.TransferFile(manifest.ArchivePath, remoteArchive); err != nil {
		return nil, s.fail(name, "create", StepTransferred, err)
	}
	s.journalStep(name, "create", StepTransferred, "ok", remoteArchive)

	if err := s.remote.ExtractArchive(deploymentPath, appconfig.Config.RemoteArchiveName); err != nil {
		return nil, s.fail(name, "create", StepExtracted, err)
	}

	if err := s.remote.NormalizeScriptPermissions(deploymentPath); err != nil {
		logger.Warn("Failed to normalize script permissions in %s: %v", deploymentPath, err)
	}

	if err := s.remote.RemoveFile(remoteArchive); err != nil {
		logger.Warn("Failed to remove remote archive %s: %v", remoteArchive, err)
	}

	s.journalStep(name, "create", StepExtracted, "ok", deploymentPath)
	logger.Info("Deployment %q complete: %d files at %s", name, len(manifest.Files), deploymentPath)

	if flavor == "" {
		flavor = "pytorch"
	}

	return &Result{
		Name:       name,
		ModelURI:   modelURI,
		Flavor:     flavor,
		Status:     "files_transferred",
		RemotePath: deploymentPath,
		Files:      manifest.Files,
		SizeBytes:  manifest.SizeBytes,
		CreatedAt:  time.Now(),
		Config:     config,
	}, nil
}

// UpdateDeployment removes the existing remote deployment best-effort, then
// recreates it. Not transactional: a failure after deletion leaves no
// deployment behind.
func (s *Service) UpdateDeployment(name, modelURI, flavor string, config map[string]string) (*Result, error) {
	logger.Info("Updating deployment %q", name)

	if err := s.remote.RemoveDirectory(path.Join(s.config.BasePath, name)); err != nil {
		logger.Warn("Pre-update cleanup of %q failed: %v", name, err)
	}

	return s.CreateDeployment(name, modelURI, flavor, config)
}

// DeleteDeployment removes the remote deployment directory. Deleting a name
// that was never created is a no-op success.
func (s *Service) DeleteDeployment(name string) error {
	logger.Info("Deleting deployment %q", name)

	if err := s.remote.RemoveDirectory(path.Join(s.config.BasePath, name)); err != nil {
		s.journalStep(name, "delete", StepFailed, "error", err.Error())
		return fmt.Errorf("failed to delete deployment %q: %w", name, err)
	}

	s.journalStep(name, "delete", "removed", "ok", "")
	return nil
}

// ListDeployments scans the remote base path. Listing is advisory: any scan
// failure degrades to an empty result instead of an error.
func (s *Service) ListDeployments() ([]Record, error) {
	dirs, err := s.remote.ListDirectories(s.config.BasePath)
	if err != nil {
		logger.Error("Failed to list deployments: %v", err)
		return []Record{}, nil
	}

	records := make([]Record, 0, len(dirs))
	for _, dir := range dirs {
		name := path.Base(dir)

		// A per-deployment probe failure must not hide the directory; the
		// entry is listed with zeroed counts instead.
		status, err := s.prober.QueryRemoteState(name)
		if err != nil {
			logger.Warn("Failed to probe deployment %q: %v", name, err)
			records = append(records, Record{Name: name, Path: dir, Status: StatusEmpty})
			continue
		}

		record := Record{
			Name:         name,
			Path:         dir,
			FileCount:    status.FileCount,
			HasModel:     status.HasModel,
			HasFaceFiles: status.HasFaceFiles,
			Status:       StatusEmpty,
		}
		if status.FileCount > 0 {
			record.Status = StatusFilesPresent
		}

		records = append(records, record)
	}

	return records, nil
}

// GetDeployment looks the name up in the scan results and enriches it with a
// fresh file-presence probe.
func (s *Service) GetDeployment(name string) (*Record, error) {
	records, err := s.ListDeployments()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Name != name {
			continue
		}

		status, err := s.prober.QueryRemoteState(name)
		if err != nil {
			return nil, fmt.Errorf("failed to probe deployment %q: %w", name, err)
		}

		record := records[i]
		record.FileStatus = status
		return &record, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Predict exists only to satisfy the capability contract.
func (s *Service) Predict(string, []byte) ([]byte, error) {
	return nil, ErrPredictNotSupported
}

// Close releases the underlying connection.
func (s *Service) Close() error {
	return s.remote.Close()
}

// fail logs the step failure, performs best-effort cleanup of the
// partially-created remote deployment, and wraps the original cause with the
// deployment name and step.
func (s *Service) fail(name, action, step string, cause error) error {
	logger.Error("Deployment %q failed at step %s: %v", name, step, cause)
	s.journalStep(name, action, step, "error", cause.Error())

	if err := s.remote.RemoveDirectory(path.Join(s.config.BasePath, name)); err != nil {
		logger.Warn("Cleanup of failed deployment %q failed: %v", name, err)
	}

	return fmt.Errorf("deployment %q failed at step %s: %w", name, step, cause)
}

func (s *Service) journalStep(name, action, step, status, detail string) {
	if err := s.journal.Record(name, action, step, status, detail); err != nil {
		logger.Warn("Failed to journal %s/%s for %q: %v", action, step, name, err)
	}
}
