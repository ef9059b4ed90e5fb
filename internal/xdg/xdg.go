// Package xdg resolves XDG Base Directory paths for sqlpilot on top of
// github.com/adrg/xdg, which also maps them to the platform conventions on
// macOS and Windows. Directories are created with private permissions.
package xdg

import (
	"os"
	"path/filepath"

	basedir "github.com/adrg/xdg"
)

// AppName is the directory name used under every base directory.
const AppName = "sqlpilot"

// ConfigDir returns the config directory (e.g. ~/.config/sqlpilot).
func ConfigDir() (string, error) {
	return ensure(basedir.ConfigHome)
}

// StateDir returns the state directory used for logs (e.g. ~/.local/state/sqlpilot).
func StateDir() (string, error) {
	return ensure(basedir.StateHome)
}

// DataDir returns the data directory used for exports and shell history
// (e.g. ~/.local/share/sqlpilot).
func DataDir() (string, error) {
	return ensure(basedir.DataHome)
}

// ConfigFile returns the path of a file in the config directory, creating
// the directory if needed.
func ConfigFile(name string) (string, error) {
	return basedir.ConfigFile(filepath.Join(AppName, name))
}

// StateFile returns the path of a file in the state directory.
func StateFile(name string) (string, error) {
	return basedir.StateFile(filepath.Join(AppName, name))
}

// DataFile returns the path of a file in the data directory.
func DataFile(name string) (string, error) {
	return basedir.DataFile(filepath.Join(AppName, name))
}

// Reload re-reads the XDG environment variables. Tests call it after
// changing them.
func Reload() {
	basedir.Reload()
}

func ensure(base string) (string, error) {
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
