package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
Version: "1"
LogLevel: debug
Telegram:
  Token: file-token
  OperatorID: 100
  OperatorPhone: "+79990001122"
  Channel: t.me/robotfixservice
DB:
  Host: localhost
  Port: 5432
  User: bot
  Password: secret
  Name: repair
  Timeout: 3s
Storage:
  Dir: /tmp/repairbot
  PublicURL: https://example.com/requests
Disk:
  Token: disk-token
  Folder: RoboFix
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestNewConfig(t *testing.T) {
	c, err := NewConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "file-token", c.Telegram.Token)
	assert.Equal(t, 100, c.Telegram.OperatorID)
	assert.Equal(t, 3*time.Second, c.DB.Timeout)
	assert.Equal(t, DefaultTelegramTimeout, c.Telegram.Timeout)
	assert.Equal(t, DefaultDiskEndpoint, c.Disk.Endpoint)
	assert.Equal(t, "host=localhost port=5432 user=bot dbname=repair password=secret sslmode=disable", c.DB.ConnectionString())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("MASTER_ID", "7")
	t.Setenv("YANDEX_DISK_FOLDER", "Archive")

	c, err := NewConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "env-token", c.Telegram.Token)
	assert.Equal(t, 7, c.Telegram.OperatorID)
	assert.Equal(t, "Archive", c.Disk.Folder)
}

func TestNewConfig_BadMasterID(t *testing.T) {
	t.Setenv("MASTER_ID", "master")

	_, err := NewConfig(writeConfig(t, sample))
	assert.Error(t, err)
}

func TestNewConfig_Validation(t *testing.T) {
	_, err := NewConfig(writeConfig(t, "Version: \"1\"\nLogLevel: info\n"))
	assert.Error(t, err)
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
