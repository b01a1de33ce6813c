package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/buildforge/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgFile := filepath.Join(t.TempDir(), "buildforge.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))
	return cfgFile
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestResolveToken(t *testing.T) {
	t.Run("should return empty string for empty input", func(t *testing.T) {
		t.Parallel()

		// given
		raw := ""

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Empty(t, result)
	})

	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "ghp_abc123xyz"

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Equal(t, "ghp_abc123xyz", result)
	})

	t.Run("should expand environment variable reference", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("TEST_TOKEN_RESOLVE", "my-secret-token")
		raw := "${TEST_TOKEN_RESOLVE}"

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Equal(t, "my-secret-token", result)
	})

	t.Run("should return empty for unset env var", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "${DEFINITELY_NOT_SET_VAR_12345}"

		// when
		result := config.ResolveToken(raw)

		// then
		assert.Empty(t, result)
	})

	t.Run("should read token from file when path exists", func(t *testing.T) {
		t.Parallel()

		// given
		tmpDir := t.TempDir()
		tokenFile := filepath.Join(tmpDir, "token.key")
		err := os.WriteFile(tokenFile, []byte("  file-based-token  \n"), 0o600)
		require.NoError(t, err)

		// when
		result := config.ResolveToken(tokenFile)

		// then
		assert.Equal(t, "file-based-token", result)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("should fail when server is missing", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Defaults()
		cfg.Token = "tok"
		cfg.OutputDir = "/tmp/out"

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server is required")
	})

	t.Run("should fail when server is not an http URL", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Defaults()
		cfg.Server = "git.example.com"
		cfg.Token = "tok"
		cfg.OutputDir = "/tmp/out"

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http(s) URL")
	})

	t.Run("should fail when token is missing", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Defaults()
		cfg.Server = "https://git.example.com"
		cfg.OutputDir = "/tmp/out"

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token is required")
	})

	t.Run("should fail when output_dir is missing", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Defaults()
		cfg.Server = "https://git.example.com"
		cfg.Token = "tok"

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output_dir is required")
	})

	t.Run("should reject exit code 0 in the failure set", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Defaults()
		cfg.Server = "https://git.example.com"
		cfg.Token = "tok"
		cfg.OutputDir = "/tmp/out"
		cfg.FailureExitCodes = []int{0, 2}

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not contain 0")
	})

	t.Run("should pass with the required values set", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Defaults()
		cfg.Server = "https://git.example.com"
		cfg.Token = "tok"
		cfg.OutputDir = "/tmp/out"

		// when
		err := config.Validate(cfg)

		// then
		require.NoError(t, err)
	})
}

//nolint:tparallel // some subtests use t.Setenv or t.Chdir which are incompatible with t.Parallel on parent
func TestLoad(t *testing.T) {
	t.Run("should load a full config file", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
ca: "/etc/ssl/private-ca.pem"
user: "ci-bot"
output_dir: "/var/lib/buildforge"
whitelist_repos:
  - "acme/widget"
blacklist_repos:
  - "acme/legacy"
publish_status: true
reporting_context: "ci/widget"
skip_if_last_success: false
force_rebuild: true
report_file: "report.xml"
build_tool: "oak"
build_config: ".json"
keep_build_history: true
failure_exit_codes: [2, 3]
concurrency: 4
command_timeout: "15m"
git_retries: 2
retry_backoff: "10s"
http_retries: 5
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://git.example.com", cfg.Server)
		assert.Equal(t, "tok", cfg.Token)
		assert.Equal(t, "/etc/ssl/private-ca.pem", cfg.CA.Path)
		assert.False(t, cfg.CA.Insecure)
		assert.Equal(t, "ci-bot", cfg.User)
		assert.Equal(t, "/var/lib/buildforge", cfg.OutputDir)
		assert.Equal(t, []string{"acme/widget"}, cfg.WhitelistRepos)
		assert.Equal(t, []string{"acme/legacy"}, cfg.BlacklistRepos)
		assert.True(t, cfg.PublishStatus)
		assert.Equal(t, "ci/widget", cfg.ReportingContext)
		assert.False(t, cfg.SkipIfLastSuccess)
		assert.True(t, cfg.ForceRebuild)
		assert.Equal(t, "report.xml", cfg.ReportFile)
		assert.Equal(t, "oak", cfg.BuildTool)
		assert.Equal(t, ".json", cfg.BuildConfig)
		assert.True(t, cfg.KeepBuildHistory)
		assert.Equal(t, []int{2, 3}, cfg.FailureExitCodes)
		assert.Equal(t, 4, cfg.Concurrency)
		assert.Equal(t, 15*time.Minute, cfg.CommandTimeout.Std())
		assert.Equal(t, 2, cfg.GitRetries)
		assert.Equal(t, 10*time.Second, cfg.RetryBackoff.Std())
		assert.Equal(t, 5, cfg.HTTPRetries)
	})

	t.Run("should apply defaults for absent keys", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "/var/lib/buildforge"
build_tool: "oak"
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.True(t, cfg.PublishStatus)
		assert.Equal(t, "buildforge", cfg.ReportingContext)
		assert.True(t, cfg.SkipIfLastSuccess)
		assert.False(t, cfg.ForceRebuild)
		assert.Equal(t, "ci.json", cfg.BuildConfig)
		assert.False(t, cfg.KeepBuildHistory)
		assert.Equal(t, []int{2}, cfg.FailureExitCodes)
		assert.Equal(t, 1, cfg.Concurrency)
		assert.Equal(t, time.Duration(0), cfg.CommandTimeout.Std())
		assert.Equal(t, 5*time.Second, cfg.RetryBackoff.Std())
		assert.Equal(t, 2, cfg.HTTPRetries)
		assert.False(t, cfg.CA.Insecure)
		assert.Empty(t, cfg.CA.Path)
	})

	t.Run("should read ca false as disabled verification", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "/var/lib/buildforge"
ca: false
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.True(t, cfg.CA.Insecure)
		assert.Empty(t, cfg.CA.Path)
	})

	t.Run("should read ca true as the system pool", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "/var/lib/buildforge"
ca: true
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.False(t, cfg.CA.Insecure)
		assert.Empty(t, cfg.CA.Path)
	})

	t.Run("should accept integer seconds for durations", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "/var/lib/buildforge"
command_timeout: 300
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.CommandTimeout.Std())
	})

	t.Run("should reject an unparseable duration", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "/var/lib/buildforge"
command_timeout: "soon"
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid duration")
	})

	t.Run("should clamp a non-positive concurrency to one", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "/var/lib/buildforge"
concurrency: 0
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Concurrency)
	})

	t.Run("should anchor a relative output_dir to the working directory", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Chdir()

		// given
		t.Chdir(t.TempDir())
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "tok"
output_dir: "out"
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(cfg.OutputDir))
		wd, wdErr := os.Getwd()
		require.NoError(t, wdErr)
		assert.Equal(t, filepath.Join(wd, "out"), cfg.OutputDir)
	})

	t.Run("should expand env vars in token during load", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("TEST_LOAD_TOKEN", "expanded-token-value")
		cfgFile := writeConfig(t, `
server: "https://git.example.com"
token: "${TEST_LOAD_TOKEN}"
output_dir: "/var/lib/buildforge"
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.NoError(t, err)
		assert.Equal(t, "expanded-token-value", cfg.Token)
	})

	t.Run("should fail for nonexistent config file", func(t *testing.T) {
		t.Parallel()

		// given
		path := "/tmp/nonexistent_buildforge_config_xyz.yaml"

		// when
		cfg, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("should fail for invalid YAML", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, "{{{{invalid yaml")

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("should fail validation when server is missing", func(t *testing.T) {
		t.Parallel()

		// given
		cfgFile := writeConfig(t, `
token: "tok"
output_dir: "/var/lib/buildforge"
`)

		// when
		cfg, err := config.Load(cfgFile)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "server is required")
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("should return error when no config file exists", func(t *testing.T) {
		// given
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		// when
		path, err := config.FindConfigFile()

		// then
		require.Error(t, err)
		assert.Empty(t, path)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("should find buildforge.yaml in current directory", func(t *testing.T) {
		// given
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		cfgFile := filepath.Join(tmpDir, "buildforge.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("server: x"), 0o600))

		// when
		path, err := config.FindConfigFile()

		// then
		require.NoError(t, err)
		assert.Equal(t, "buildforge.yaml", path)
	})

	t.Run("should prefer the hidden variant over the plain one", func(t *testing.T) {
		// given
		tmpDir := t.TempDir()
		t.Chdir(tmpDir)

		require.NoError(t, os.WriteFile(
			filepath.Join(tmpDir, ".buildforge.yaml"), []byte("server: x"), 0o600,
		))
		require.NoError(t, os.WriteFile(
			filepath.Join(tmpDir, "buildforge.yaml"), []byte("server: x"), 0o600,
		))

		// when
		path, err := config.FindConfigFile()

		// then
		require.NoError(t, err)
		assert.Equal(t, ".buildforge.yaml", path)
	})
}
