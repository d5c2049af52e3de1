package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"probe": "/usr/bin/lshw",
		"probe_args": ["-json", "-sanitize"],
		"manifest": "/var/lib/manifest.xml",
		"timeout": "45s",
		"device_id": "550e8400-e29b-41d4-a716-446655440000",
		"url": "https://ota.example.com/api/v1/system_info",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/usr/bin/lshw", cfg.Probe)
	assert.Equal(t, []string{"-json", "-sanitize"}, cfg.ProbeArgs)
	assert.Equal(t, "/var/lib/manifest.xml", cfg.Manifest)
	assert.Equal(t, "45s", cfg.Timeout)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", cfg.DeviceID)
	assert.Equal(t, "https://ota.example.com/api/v1/system_info", cfg.URL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvProbe, "  lshw -json   -sanitize ")
	t.Setenv(EnvManifest, "/tmp/manifest.xml")
	t.Setenv(EnvTimeout, "10")
	t.Setenv(EnvSchema, "")
	t.Setenv(EnvURL, "http://localhost:8080/system_info")
	t.Setenv(EnvToken, "secret")
	t.Setenv(EnvDeviceID, "")

	cfg := FromEnv()

	assert.Equal(t, "lshw", cfg.Probe)
	assert.Equal(t, []string{"-json", "-sanitize"}, cfg.ProbeArgs)
	assert.Equal(t, "/tmp/manifest.xml", cfg.Manifest)
	assert.Equal(t, "10", cfg.Timeout)
	assert.Empty(t, cfg.Schema)
	assert.Equal(t, "http://localhost:8080/system_info", cfg.URL)
	assert.Equal(t, "secret", cfg.Token)
	assert.Empty(t, cfg.DeviceID)
}

func TestFromEnv_Unset(t *testing.T) {
	t.Setenv(EnvProbe, "")

	cfg := FromEnv()
	assert.Empty(t, cfg.Probe)
	assert.Nil(t, cfg.ProbeArgs)
}

func TestValidate_InvalidURL(t *testing.T) {
	cfg := &Config{URL: "not a url"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "'url' is not a valid url")
}

func TestValidate_InvalidDeviceID(t *testing.T) {
	cfg := &Config{DeviceID: "device-42"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "'device_id' is not a valid uuid")
}

func TestValidate_InvalidTimeout(t *testing.T) {
	cfg := &Config{Timeout: "soon"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := &Config{Timeout: "-5s"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be non-negative")
}

func TestValidate_TimeoutOutOfRange(t *testing.T) {
	for _, timeout := range []string{"10000000000", "-10000000000"} {
		cfg := &Config{Timeout: timeout}

		err := cfg.Validate()
		require.Error(t, err, timeout)
		assert.Contains(t, err.Error(), "out of range")
		assert.NotContains(t, err.Error(), "non-negative")
	}
}

func TestProbeTimeout_LargestWholeSeconds(t *testing.T) {
	cfg := Config{Timeout: "9223372036"}

	timeout, err := cfg.ProbeTimeout()
	require.NoError(t, err)
	assert.Equal(t, 9223372036*time.Second, timeout)
}

func TestValidate_SchemaNotFound(t *testing.T) {
	cfg := &Config{Schema: "/nonexistent/schema.json"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Timeout = "30s"
	cfg.URL = "https://ota.example.com/api/v1/mydevice/system_info"
	cfg.DeviceID = "550e8400-e29b-41d4-a716-446655440000"

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "lshw", cfg.Probe)
	assert.Equal(t, []string{"-json"}, cfg.ProbeArgs)
	assert.Equal(t, "/etc/manifest.xml", cfg.Manifest)
	assert.Equal(t, "/etc/manifest.xml", cfg.ManifestPath())
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		Probe:     "lshw",
		ProbeArgs: []string{"-json"},
		Manifest:  "/etc/manifest.xml",
		Timeout:   "30s",
		URL:       "https://ota.example.com",
	}

	partial := Config{
		Manifest: "/tmp/custom.xml",
		Token:    "abc",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "/tmp/custom.xml", merged.Manifest)
	assert.Equal(t, "abc", merged.Token)

	// Default values should fill in empty fields
	assert.Equal(t, "lshw", merged.Probe)
	assert.Equal(t, []string{"-json"}, merged.ProbeArgs)
	assert.Equal(t, "30s", merged.Timeout)
	assert.Equal(t, "https://ota.example.com", merged.URL)
}

func TestMergeWithDefaults_ProbeArgsFollowProbe(t *testing.T) {
	custom := Config{Probe: "/opt/bin/hwprobe"}

	merged := custom.MergeWithDefaults(Defaults())

	assert.Equal(t, "/opt/bin/hwprobe", merged.Probe)
	assert.Empty(t, merged.ProbeArgs, "default lshw arguments must not leak onto another probe")
}

func TestMergeWithDefaults_Bools(t *testing.T) {
	flags := Config{}
	file := Config{NoManifest: true, Verbose: true}

	merged := flags.MergeWithDefaults(file)

	assert.True(t, merged.NoManifest)
	assert.True(t, merged.Verbose)
	assert.Empty(t, merged.ManifestPath())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Probe: "lshw", Token: "t"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "lshw", merged.Probe)
	assert.Equal(t, "t", merged.Token)
}

func TestProbeCommand(t *testing.T) {
	tests := []struct {
		name     string
		timeout  string
		expected time.Duration
	}{
		{name: "unset", timeout: "", expected: 0},
		{name: "seconds", timeout: "15", expected: 15 * time.Second},
		{name: "duration", timeout: "1m30s", expected: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Probe: "lshw", ProbeArgs: []string{"-json"}, Timeout: tt.timeout}

			cmd, err := cfg.ProbeCommand()
			require.NoError(t, err)
			assert.Equal(t, "lshw", cmd.Name)
			assert.Equal(t, []string{"-json"}, cmd.Args)
			assert.Equal(t, tt.expected, cmd.Timeout)
		})
	}
}

func TestProbeCommand_BadTimeout(t *testing.T) {
	cfg := Config{Probe: "lshw", Timeout: "later"}

	_, err := cfg.ProbeCommand()
	assert.Error(t, err)
}
