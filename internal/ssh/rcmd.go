package ssh

import (
	"fmt"
	"strings"
)

// Remote commands are plain shell strings, so every externally supplied
// value (base path, deployment name, file paths) passes through quote before
// interpolation. Glob patterns are quoted too, so they expand remotely, not
// locally.

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func mkdirCmd(path string) string {
	return fmt.Sprintf("mkdir -p %s", quote(path))
}

func extractCmd(dir, archiveName string) string {
	return fmt.Sprintf("cd %s && tar -xzf %s", quote(dir), quote(archiveName))
}

func chmodScriptsCmd(dir string) string {
	return fmt.Sprintf(`find %s -type f \( -name '*.py' -o -name '*.sh' \) -exec chmod +x {} +`, quote(dir))
}

func removeDirCmd(path string) string {
	return fmt.Sprintf("rm -rf %s", quote(path))
}

func removeFileCmd(path string) string {
	return fmt.Sprintf("rm -f %s", quote(path))
}

func listDirsCmd(base string) string {
	return fmt.Sprintf("find %s -maxdepth 1 -type d -not -path %s", quote(base), quote(base))
}

func countFilesCmd(dir string) string {
	return fmt.Sprintf("find %s -type f | wc -l", quote(dir))
}

func findFirstCmd(dir string, patterns ...string) string {
	var clauses []string
	for _, pattern := range patterns {
		clauses = append(clauses, fmt.Sprintf("-name %s", quote(pattern)))
	}
	return fmt.Sprintf("find %s %s | head -1", quote(dir), strings.Join(clauses, " -o "))
}

func portListeningCmd(port int) string {
	// Anchored so port 80 never matches an :8080 listener.
	return fmt.Sprintf(`netstat -tulpn | grep -E %s`, quote(fmt.Sprintf(`:%d\b`, port)))
}
