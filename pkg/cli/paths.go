package cli

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir is the songbook directory below the home directory.
	DefaultBaseDir = ".songbook"
	// DefaultConfigFile is the config file name inside the base directory.
	DefaultConfigFile = "config.yaml"
	// ConfigEnv overrides the config file location.
	ConfigEnv = "SONGBOOK_CONFIG"
)

// Paths locates the songbook files of a user.
type Paths struct {
	HomeDir string
}

// NewPaths returns the Paths of the current user.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir is ~/.songbook.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile is ~/.songbook/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// LibraryDir holds the badger song library.
func (p *Paths) LibraryDir() string {
	return filepath.Join(p.BaseDir(), "library")
}

// ScoresDir is the default root of the local score store.
func (p *Paths) ScoresDir() string {
	return filepath.Join(p.BaseDir(), "scores")
}
