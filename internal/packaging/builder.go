// Package packaging assembles a deployment bundle: the resolved model
// artifact plus whatever companion files exist, staged into a fixed layout
// and archived as a single gzip tarball.
package packaging

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"edgedeploy/internal/deviceconfig"
	"edgedeploy/internal/logger"
	"edgedeploy/internal/templates"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"
)

// Manifest records exactly what went into one built package.
type Manifest struct {
	ArchivePath    string    `json:"archive_path"`
	DeploymentName string    `json:"deployment_name"`
	ModelSource    string    `json:"model_source"`
	CreatedAt      time.Time `json:"created_at"`
	SizeBytes      int64     `json:"size_bytes"`
	Files          []string  `json:"files"`
}

// Builder stages and archives deployment packages. Stateless per Build call
// apart from the companion-file resolution done once at construction.
type Builder struct {
	config  *deviceconfig.Config
	located map[string]string
}

func NewBuilder(config *deviceconfig.Config, projectRoot string) *Builder {
	return &Builder{
		config:  config,
		located: locateFiles(projectRoot),
	}
}

// Build stages models/, data/, scripts/ and docker/ subtrees plus a
// README.txt, archives them, and returns the manifest. Per-file resolution
// failures degrade to placeholders or skips; only a failure to produce the
// final archive is fatal.
func (b *Builder) Build(modelPath, deploymentName, modelLocator string, extraConfig map[string]string) (*Manifest, error) {
	logger.Info("Building package for deployment %q", deploymentName)

	stagingDir, err := os.MkdirTemp("", "edgedeploy_stage_")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	packageDir := filepath.Join(stagingDir, "package")
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create package directory: %w", err)
	}

	b.stageModel(modelPath, filepath.Join(packageDir, "models"))
	b.stageData(filepath.Join(packageDir, "data"))
	b.stageScripts(filepath.Join(packageDir, "scripts"))
	b.stageDockerFiles(filepath.Join(packageDir, "docker"))

	if err := b.writeReadme(packageDir, deploymentName, modelLocator, extraConfig); err != nil {
		logger.Warn("Failed to write package README: %v", err)
	}

	files, err := relativeFileList(packageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate staged files: %w", err)
	}

	archivePath, err := archiveTree(packageDir, deploymentName)
	if err != nil {
		return nil, fmt.Errorf("package creation failed: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("package file was not created: %w", err)
	}

	logger.Info("Created package %s (%d bytes, %d files)", archivePath, info.Size(), len(files))

	return &Manifest{
		ArchivePath:    archivePath,
		DeploymentName: deploymentName,
		ModelSource:    modelPath,
		CreatedAt:      time.Now(),
		SizeBytes:      info.Size(),
		Files:          files,
	}, nil
}

// stageModel copies the model artifact into models/. A file is copied
// as-is, a directory recursively under models/model. A missing model path
// degrades to a placeholder note.
func (b *Builder) stageModel(modelPath string, destDir string) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		logger.Warn("Failed to create %s: %v", destDir, err)
		return
	}

	info, err := os.Stat(modelPath)
	switch {
	case err != nil:
		logger.Warn("Model path not found: %s", modelPath)
		note := fmt.Sprintf("Model not found at: %s\n", modelPath)
		if err := os.WriteFile(filepath.Join(destDir, "model_placeholder.txt"), []byte(note), 0o644); err != nil {
			logger.Warn("Failed to write model placeholder: %v", err)
		}
	case info.IsDir():
		if err := copyTree(modelPath, filepath.Join(destDir, "model")); err != nil {
			logger.Warn("Failed to copy model directory: %v", err)
		}
	default:
		if err := copyFile(modelPath, filepath.Join(destDir, filepath.Base(modelPath)), 0o644); err != nil {
			logger.Warn("Failed to copy model file: %v", err)
		}
	}
}

// stageData copies the data-catalog files; a missing file gets a placeholder
// marker so the archive layout stays stable regardless of which files exist.
func (b *Builder) stageData(destDir string) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		logger.Warn("Failed to create %s: %v", destDir, err)
		return
	}

	for _, name := range dataFiles {
		source := b.located[name]
		if source != "" {
			if err := copyFile(source, filepath.Join(destDir, name), 0o644); err != nil {
				logger.Warn("Failed to copy %s: %v", name, err)
			}
			continue
		}

		marker := fmt.Sprintf("Original file not found: %s\n", name)
		if err := os.WriteFile(filepath.Join(destDir, name+".placeholder"), []byte(marker), 0o644); err != nil {
			logger.Warn("Failed to write placeholder for %s: %v", name, err)
		}
	}
}

// stageScripts copies scripts with the executable bit set. Missing scripts
// are skipped.
func (b *Builder) stageScripts(destDir string) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		logger.Warn("Failed to create %s: %v", destDir, err)
		return
	}

	for _, name := range scriptFiles {
		source := b.located[name]
		if source == "" {
			continue
		}
		if err := copyFile(source, filepath.Join(destDir, name), 0o755); err != nil {
			logger.Warn("Failed to copy %s: %v", name, err)
		}
	}
}

// stageDockerFiles only creates docker/ when at least one file is found.
func (b *Builder) stageDockerFiles(destDir string) {
	for _, name := range dockerFiles {
		source := b.located[name]
		if source == "" {
			continue
		}

		if err := os.MkdirAll(destDir, 0o755); err != nil {
			logger.Warn("Failed to create %s: %v", destDir, err)
			return
		}

		if err := copyFile(source, filepath.Join(destDir, name), 0o644); err != nil {
			logger.Warn("Failed to copy %s: %v", name, err)
		}
	}
}

func (b *Builder) writeReadme(packageDir, deploymentName, modelLocator string, extraConfig map[string]string) error {
	tplData, err := templates.Docs.ReadFile(templates.ReadmeTemplatePath)
	if err != nil {
		return err
	}

	tpl, err := raymond.Parse(string(tplData))
	if err != nil {
		return err
	}

	configText := "No additional configuration"
	if len(extraConfig) > 0 {
		var keys []string
		for key := range extraConfig {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		configText = ""
		for _, key := range keys {
			configText += fmt.Sprintf("%s: %s\n", key, extraConfig[key])
		}
	}

	content, err := tpl.Exec(map[string]string{
		"deploymentName": deploymentName,
		"modelURI":       modelLocator,
		"createdAt":      time.Now().Format("2006-01-02 15:04:05"),
		"deploymentPath": path.Join(b.config.BasePath, deploymentName),
		"extraConfig":    configText,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(packageDir, "README.txt"), []byte(content), 0o644)
}

// archiveTree writes a gzip tarball of the staged tree to a durable
// temporary path that outlives the staging scratch space.
func archiveTree(packageDir, deploymentName string) (string, error) {
	archiveName := fmt.Sprintf("edgedeploy_%s_%s.tar.gz", deploymentName, uuid.NewString()[:8])
	archivePath := filepath.Join(os.TempDir(), archiveName)

	out, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	gzw := gzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	err = filepath.Walk(packageDir, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(packageDir, file)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		in, err := os.Open(file)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(tw, in)
		return err
	})
	if err != nil {
		os.Remove(archivePath)
		return "", err
	}

	if err := tw.Close(); err != nil {
		os.Remove(archivePath)
		return "", err
	}
	if err := gzw.Close(); err != nil {
		os.Remove(archivePath)
		return "", err
	}

	return archivePath, nil
}

func relativeFileList(packageDir string) ([]string, error) {
	var files []string

	err := filepath.Walk(packageDir, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(packageDir, file)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func copyFile(source, dest string, mode os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func copyTree(source, dest string) error {
	return filepath.Walk(source, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(source, file)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		return copyFile(file, target, info.Mode().Perm())
	})
}
