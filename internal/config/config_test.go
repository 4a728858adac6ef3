package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, filepath.Join("archives", "comments"), cfg.Comments())
	assert.Equal(t, filepath.Join("archives", "archives.json"), cfg.OutputPath())
	assert.Equal(t, "https://oss-cn-beijing.aliyuncs.com", cfg.OSS.EndpointURL())
}

func TestLoadLegacySecretsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"oss": {"accessKeyId": "id", "accessKeySecret": "secret"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.OSS.AccessKeyID)
	assert.Equal(t, "secret", cfg.OSS.AccessKeySecret)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "lanting-public", cfg.OSS.Bucket)
	assert.Equal(t, 1000, cfg.OSS.MaxKeys)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanting.yaml")
	content := `archiveDir: /srv/archives
output: /tmp/out.json
origsDir: /srv/origs
oss:
  endpoint: http://localhost:9000
  maxKeys: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/archives", "comments"), cfg.Comments())
	assert.Equal(t, "/tmp/out.json", cfg.OutputPath())
	assert.Equal(t, "http://localhost:9000", cfg.OSS.EndpointURL())
	assert.Equal(t, 50, cfg.OSS.MaxKeys)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanting.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oss:\n  bucket: from-file\n"), 0o644))

	t.Setenv("LANTING_OSS_BUCKET", "from-env")
	t.Setenv("LANTING_OSS_MAX_KEYS", "20")
	t.Setenv("LANTING_MAX_FILE_SIZE", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OSS.Bucket)
	assert.Equal(t, 20, cfg.OSS.MaxKeys)
	assert.Equal(t, int64(1_000_000), cfg.MaxFileSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oss: [unterminated"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.Error(t, cfg.Validate())

	cfg.OrigsDir = "origs"
	assert.NoError(t, cfg.Validate())

	cfg = Defaults()
	cfg.OSS.AccessKeyID, cfg.OSS.AccessKeySecret = "id", "secret"
	assert.NoError(t, cfg.Validate())

	cfg.OSS.Bucket = ""
	assert.Error(t, cfg.Validate())
}
