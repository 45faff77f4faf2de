package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, Load(""))
	assert.Equal(t, "warn", viper.GetString(KeyLogLevel))
	assert.Equal(t, ".", viper.GetString(KeyRepoDir))
	assert.Equal(t, runtime.NumCPU(), viper.GetInt(KeyFsckWorkers))
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BLOBULAR_LOG_LEVEL", "debug")
	t.Setenv("BLOBULAR_FSCK_WORKERS", "3")

	require.NoError(t, Load(""))
	assert.Equal(t, "debug", viper.GetString(KeyLogLevel))
	assert.Equal(t, 3, viper.GetInt(KeyFsckWorkers))
}

func TestLoad_ExplicitFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "blobular.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\nfsck:\n  workers: 2\n"), 0644))

	require.NoError(t, Load(path))
	assert.Equal(t, "info", viper.GetString(KeyLogLevel))
	assert.Equal(t, 2, viper.GetInt(KeyFsckWorkers))
}

func TestLoad_BadFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0644))

	err := Load(path)
	assert.Error(t, err)
}
