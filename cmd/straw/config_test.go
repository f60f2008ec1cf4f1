package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)

	dir, err := ioutil.TempDir("", "straw")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "straw.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("matrix_type: oe\nworkers: 3\nseparator: \",\"\n"), 0644))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "oe", cfg.MatrixType)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, ",", cfg.Separator)

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
