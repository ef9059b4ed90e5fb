package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirsHonorEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	Reload()
	t.Cleanup(Reload)

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(root, "config", AppName)},
		{"state", StateDir, filepath.Join(root, "state", AppName)},
		{"data", DataDir, filepath.Join(root, "data", AppName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := tt.fn()
			require.NoError(t, err)
			assert.Equal(t, tt.want, dir)
			assert.DirExists(t, dir)
		})
	}

	file, err := ConfigFile("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "config", AppName, "config.yaml"), file)
	_, err = os.Stat(filepath.Dir(file))
	assert.NoError(t, err)
}
