// Package artifacts is the boundary to the model registry. The orchestrator
// only ever asks it to materialize a model locator as a local path.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"edgedeploy/internal/logger"
)

var ErrArtifactNotFound = errors.New("model artifact not found")

// Resolver downloads the artifact behind a locator into destDir and returns
// the resulting local path.
type Resolver interface {
	Download(locator string, destDir string) (string, error)
}

// LocalResolver serves locators that are plain filesystem paths or file://
// URIs by copying the file or tree into the destination directory.
type LocalResolver struct{}

func (LocalResolver) Download(locator string, destDir string) (string, error) {
	source := locator
	if strings.HasPrefix(locator, "file://") {
		parsed, err := url.Parse(locator)
		if err != nil {
			return "", fmt.Errorf("invalid artifact locator %q: %w", locator, err)
		}
		source = parsed.Path
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, source)
	}

	dest := filepath.Join(destDir, filepath.Base(source))

	logger.Info("Resolving model artifact %s -> %s", locator, dest)

	if info.IsDir() {
		if err := copyTree(source, dest); err != nil {
			return "", fmt.Errorf("failed to copy artifact tree: %w", err)
		}
		return dest, nil
	}

	if err := copyFile(source, dest); err != nil {
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}

	return dest, nil
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
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

		return copyFile(file, target)
	})
}
