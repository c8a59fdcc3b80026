package packaging

import (
	"os"
	"path/filepath"

	"edgedeploy/internal/logger"
)

// The companion catalog is a fixed, ordered set of well-known filenames the
// builder tries to include alongside the model. Absence of any of them is
// tolerated.

var dataFiles = []string{
	"face_features.pkl",
	"face_database.json",
	"model_params.json",
	"face_model_v2.pkl",
	"label_encoder.pkl",
	"random_forest_model.pkl",
}

var scriptFiles = []string{
	"inference_server_rtsp.py",
	"model_server.py",
	"client.py",
	"amrit_test.jpg",
}

var dockerFiles = []string{
	"Dockerfile.inference-server",
	"Dockerfile.model-server",
	"model_server_requirements.txt",
}

func catalogNames() []string {
	var names []string
	names = append(names, dataFiles...)
	names = append(names, scriptFiles...)
	names = append(names, dockerFiles...)
	return names
}

// searchRoots lists the directories probed for companion files, in priority
// order. The first root containing a file wins.
func searchRoots(projectRoot string) []string {
	return []string{
		filepath.Join(projectRoot, "edge"),
		filepath.Join(projectRoot, "models"),
		filepath.Join(projectRoot, "edge", "docker"),
	}
}

// locateFiles resolves every catalog filename against the search roots.
// Missing files map to the empty string.
func locateFiles(projectRoot string) map[string]string {
	located := make(map[string]string)

	for _, name := range catalogNames() {
		located[name] = ""
		for _, root := range searchRoots(projectRoot) {
			candidate := filepath.Join(root, name)
			if _, err := os.Stat(candidate); err == nil {
				located[name] = candidate
				logger.Debug("Found companion file %s at %s", name, candidate)
				break
			}
		}
		if located[name] == "" {
			logger.Debug("Companion file %s not found in any search root", name)
		}
	}

	return located
}
