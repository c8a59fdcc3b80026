package deviceconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKey(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("fake key material"), 0o600))
	return path
}

func TestFromURIBareAddress(t *testing.T) {
	cfg, err := FromURI("edge://10.0.0.5")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.DeviceAddress)
	assert.NotEmpty(t, cfg.Username)
	assert.NotEmpty(t, cfg.BasePath)
	assert.Positive(t, cfg.TimeoutSeconds)
}

func TestFromURIWrongScheme(t *testing.T) {
	_, err := FromURI("ftp://10.0.0.5")
	require.ErrorIs(t, err, ErrInvalidScheme)
}

func TestFromURIConfigFileNotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := FromURI("edge://missing_device.yaml")
	require.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestFromConfigFileSearchOrder(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	configDir := filepath.Join(tmp, "deployment_configs")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := []byte(`
device_address: 192.168.2.100
username: lab
deployment_base_path: /data/deployments
timeout: 60
max_retries: 5
`)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "lab_device.yaml"), content, 0o644))

	cfg, err := FromURI("edge://lab_device.yaml")
	require.NoError(t, err)

	assert.Equal(t, "192.168.2.100", cfg.DeviceAddress)
	assert.Equal(t, "lab", cfg.Username)
	assert.Equal(t, "/data/deployments", cfg.BasePath)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestFromConfigFileCurrentDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	require.NoError(t, os.WriteFile(filepath.Join(tmp, "device.yml"), []byte("device_address: 10.1.1.1\n"), 0o644))

	cfg, err := FromConfigFile("device.yml")
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", cfg.DeviceAddress)
}

func TestFromConfigFileExpandsKeyPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeKey(t, home, ".ssh/custom_key")

	tmp := t.TempDir()
	t.Chdir(tmp)

	content := []byte("device_address: 10.1.1.1\nssh_key_path: ~/.ssh/custom_key\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "device.yaml"), content, 0o644))

	cfg, err := FromConfigFile("device.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssh/custom_key"), cfg.SSHKeyPath)
}

func TestValidateMissingAddress(t *testing.T) {
	cfg := &Config{Password: "secret", TimeoutSeconds: 10}
	require.ErrorIs(t, cfg.Validate(), ErrMissingDeviceAddress)
}

func TestValidateInvalidIP(t *testing.T) {
	cfg := &Config{DeviceAddress: "300.0.0.1", Password: "secret", TimeoutSeconds: 10}
	require.Error(t, cfg.Validate())
}

func TestValidateHostnamePasses(t *testing.T) {
	cfg := &Config{DeviceAddress: "device.lab.local", Password: "secret", TimeoutSeconds: 10}
	require.NoError(t, cfg.Validate())
}

func TestValidateNoAuthAndNoDefaultKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Config{DeviceAddress: "10.0.0.5", TimeoutSeconds: 10}
	require.ErrorIs(t, cfg.Validate(), ErrNoAuthMethod)
}

func TestValidateFallsBackToDefaultKey(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	expected := writeKey(t, home, ".ssh/id_rsa")

	cfg := &Config{DeviceAddress: "10.0.0.5", TimeoutSeconds: 10}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, expected, cfg.SSHKeyPath)
}

func TestValidateDefaultKeyPreference(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	edgeKey := writeKey(t, home, ".ssh/edge_key")
	writeKey(t, home, ".ssh/id_rsa")

	cfg := &Config{DeviceAddress: "10.0.0.5", TimeoutSeconds: 10}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, edgeKey, cfg.SSHKeyPath)
}

func TestValidateMissingKeyFile(t *testing.T) {
	cfg := &Config{
		DeviceAddress:  "10.0.0.5",
		SSHKeyPath:     filepath.Join(t.TempDir(), "no_such_key"),
		TimeoutSeconds: 10,
	}
	require.ErrorIs(t, cfg.Validate(), ErrKeyFileNotFound)
}

func TestValidateTimeoutAndRetries(t *testing.T) {
	cfg := &Config{DeviceAddress: "10.0.0.5", Password: "secret"}
	require.ErrorIs(t, cfg.Validate(), ErrInvalidTimeout)

	cfg.TimeoutSeconds = 10
	cfg.MaxRetries = -1
	require.ErrorIs(t, cfg.Validate(), ErrInvalidRetries)
}

func TestRedactedHidesPassword(t *testing.T) {
	cfg := &Config{DeviceAddress: "10.0.0.5", Password: "hunter2"}

	redacted := cfg.Redacted()
	assert.NotContains(t, redacted, "hunter2")
	assert.Contains(t, redacted, "***hidden***")
}
