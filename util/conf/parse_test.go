package conf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-feedback/restproxy/util/conf"
)

type testUpstream struct {
	URL       string            `conf:"url"`
	Timeout   time.Duration     `conf:"timeout"`
	VerifyTLS bool              `conf:"verify_tls"`
	Headers   map[string]string `conf:"headers"`
}

type testConfig struct {
	LogLevel string       `conf:"log_level"`
	Upstream testUpstream `conf:"upstream"`
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := conf.Parse[testConfig](conf.ParseOptions{
		Defaults: conf.DefaultConfig{
			"log_level":           "info",
			"upstream.url":        "http://localhost:8090/api/increment",
			"upstream.timeout":    "5s",
			"upstream.verify_tls": true,
		},
		EnvPrefix: "CONFTEST_DEFAULTS_",
	})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8090/api/increment", cfg.Upstream.URL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.True(t, cfg.Upstream.VerifyTLS)
}

func TestParse_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CONFTEST_ENV_UPSTREAM__URL", "https://upstream.internal/api")
	t.Setenv("CONFTEST_ENV_UPSTREAM__VERIFY_TLS", "false")

	cfg, err := conf.Parse[testConfig](conf.ParseOptions{
		Defaults: conf.DefaultConfig{
			"upstream.url":        "http://localhost:8090/api/increment",
			"upstream.verify_tls": true,
		},
		EnvPrefix: "CONFTEST_ENV_",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://upstream.internal/api", cfg.Upstream.URL)
	assert.False(t, cfg.Upstream.VerifyTLS)
}

func TestParse_File(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "config.json")

	content := `{"upstream": {"url": "http://file:8090", "headers": {"X-Tenant": "acme"}}}`
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0o600))

	cfg, err := conf.Parse[testConfig](conf.ParseOptions{
		FileName:  fileName,
		EnvPrefix: "CONFTEST_FILE_",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://file:8090", cfg.Upstream.URL)
	assert.Equal(t, "acme", cfg.Upstream.Headers["X-Tenant"])
}

func TestParse_MissingFileFails(t *testing.T) {
	_, err := conf.Parse[testConfig](conf.ParseOptions{
		FileName:  filepath.Join(t.TempDir(), "missing.json"),
		EnvPrefix: "CONFTEST_MISSING_",
	})
	assert.Error(t, err)
}

func TestMergeDefaults(t *testing.T) {
	merged := conf.MergeDefaults("upstream",
		map[string]any{"url": "a", "timeout": "1s"},
		map[string]any{"url": "b"},
	)

	assert.Equal(t, map[string]any{
		"upstream.url":     "b",
		"upstream.timeout": "1s",
	}, merged)
}
