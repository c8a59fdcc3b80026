package config

import (
	"os"
	"path/filepath"
	"strconv"

	"edgedeploy/internal/logger"

	"github.com/joho/godotenv"
)

func init() {
	envFiles := []string{
		".env",
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Error loading %s: %v", envFile, err)
			}
		}
	}
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("Invalid integer for %s: %v", key, err)
		return defaultValue
	}

	return parsed
}

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Could not determine home directory: %v", err)
		return ""
	}
	return homeDir
}

func getDefaultJournalPath(fallback string, profile string) string {
	homeDir := getHomeDir()
	if homeDir == "" {
		return fallback
	}
	return filepath.Join(homeDir, ".edgedeploy", profile, "edgedeploy.db")
}

type Configuration struct {
	EdgedeployProfile string

	JournalPath     string
	ConfigSearchDir string

	DefaultUsername string
	DefaultBasePath string
	DefaultTimeout  int
	DefaultRetries  int

	RemoteArchiveName string
	HealthPort        int
}

var Config = &Configuration{
	EdgedeployProfile: GetEnv("EDGEDEPLOY_PROFILE", "default"),

	JournalPath:     GetEnv("EDGEDEPLOY_JOURNAL_PATH", getDefaultJournalPath("edgedeploy.db", GetEnv("EDGEDEPLOY_PROFILE", "default"))),
	ConfigSearchDir: GetEnv("EDGEDEPLOY_CONFIG_DIR", "deployment_configs"),

	DefaultUsername: GetEnv("EDGEDEPLOY_DEFAULT_USERNAME", "edge"),
	DefaultBasePath: GetEnv("EDGEDEPLOY_DEFAULT_BASE_PATH", "/home/edge/model_deployments"),
	DefaultTimeout:  getEnvInt("EDGEDEPLOY_DEFAULT_TIMEOUT", 120),
	DefaultRetries:  getEnvInt("EDGEDEPLOY_DEFAULT_RETRIES", 3),

	RemoteArchiveName: GetEnv("EDGEDEPLOY_REMOTE_ARCHIVE_NAME", "files_package.tar.gz"),
	HealthPort:        getEnvInt("EDGEDEPLOY_HEALTH_PORT", 8080),
}
