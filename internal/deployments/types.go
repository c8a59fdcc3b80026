package deployments

import "time"

// Lifecycle steps of one create/update call. Failure is absorbing: a failed
// step aborts the sequence and triggers best-effort remote cleanup.
const (
	StepInitiated       = "initiated"
	StepModelDownloaded = "model_downloaded"
	StepPackaged        = "packaged"
	StepTransferred     = "transferred"
	StepExtracted       = "extracted"
	StepFailed          = "failed"
)

// Deployment status values derived from remote scans.
const (
	StatusFilesPresent = "files_present"
	StatusEmpty        = "empty"
)

// Result is returned to the caller after a successful create or update.
type Result struct {
	Name       string            `json:"name"`
	ModelURI   string            `json:"model_uri"`
	Flavor     string            `json:"flavor"`
	Status     string            `json:"status"`
	RemotePath string            `json:"remote_path"`
	Files      []string          `json:"files"`
	SizeBytes  int64             `json:"size_bytes"`
	CreatedAt  time.Time         `json:"created_at"`
	Config     map[string]string `json:"config,omitempty"`
}

// FileStatus is a point-in-time probe of the files present in one remote
// deployment directory.
type FileStatus struct {
	FileCount          int  `json:"file_count"`
	HasModel           bool `json:"has_model"`
	HasFaceFeatures    bool `json:"has_face_features"`
	HasFaceDatabase    bool `json:"has_face_database"`
	HasModelParams     bool `json:"has_model_params"`
	HasInferenceScript bool `json:"has_inference_script"`
	HasFaceFiles       bool `json:"has_face_files"`
}

// Record describes one deployment as reconstructed from the remote
// filesystem. Two calls may observe different records if the device changed
// in between; nothing is persisted locally.
type Record struct {
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	FileCount    int         `json:"file_count"`
	HasModel     bool        `json:"has_model"`
	HasFaceFiles bool        `json:"has_face_files"`
	Status       string      `json:"status"`
	FileStatus   *FileStatus `json:"file_status,omitempty"`
}
