package deployments

import (
	"path"

	"edgedeploy/internal/deviceconfig"
)

// Filename probes used to classify a deployment directory. This is a
// heuristic scan: a directory with look-alike files will be mis-classified.
var modelPatterns = []string{"*.pkl", "*.pth", "*.pt"}

// remoteProber answers state queries by issuing find/wc commands through the
// connection manager.
type remoteProber struct {
	remote Remote
	config *deviceconfig.Config
}

func (p *remoteProber) QueryRemoteState(name string) (*FileStatus, error) {
	deploymentPath := path.Join(p.config.BasePath, name)

	count, err := p.remote.CountFiles(deploymentPath)
	if err != nil {
		return nil, err
	}

	status := &FileStatus{FileCount: count}

	probes := []struct {
		target   *bool
		patterns []string
	}{
		{&status.HasModel, modelPatterns},
		{&status.HasFaceFeatures, []string{"face_features.pkl"}},
		{&status.HasFaceDatabase, []string{"face_database.json"}},
		{&status.HasModelParams, []string{"model_params.json"}},
		{&status.HasInferenceScript, []string{"inference_server.py"}},
	}

	for _, probe := range probes {
		found, err := p.remote.FileExists(deploymentPath, probe.patterns...)
		if err != nil {
			return nil, err
		}
		*probe.target = found
	}

	status.HasFaceFiles = status.HasFaceFeatures && status.HasFaceDatabase && status.HasModelParams

	return status, nil
}
