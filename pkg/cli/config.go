package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/songbook/pkg/library"
	"github.com/haivivi/songbook/pkg/storage"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Config is the songbook configuration file.
type Config struct {
	Library    LibraryConfig `json:"library,omitempty" yaml:"library,omitempty"`
	Storage    StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`
	Output     OutputConfig  `json:"output,omitempty" yaml:"output,omitempty"`
	RepairJSON bool          `json:"repair_json,omitempty" yaml:"repair_json,omitempty"`

	path  string
	paths *Paths
}

// LibraryConfig locates the song library.
type LibraryConfig struct {
	// Dir defaults to ~/.songbook/library.
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	InMemory bool   `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`
}

// StorageConfig selects where score files are read and written.
type StorageConfig struct {
	// Backend is "local" (default) or "s3".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Root is the local root directory. Defaults to the working directory.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
}

// OutputConfig sets output defaults.
type OutputConfig struct {
	Format OutputFormat `json:"format,omitempty" yaml:"format,omitempty"`
}

// LoadConfig reads the config file at path. An empty path means
// $SONGBOOK_CONFIG, else ~/.songbook/config.yaml. A missing file yields the
// defaults and is not created until Save.
func LoadConfig(path string) (*Config, error) {
	paths, err := NewPaths()
	if err != nil {
		return nil, fmt.Errorf("cli: home directory: %w", err)
	}
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		path = paths.ConfigFile()
	}

	cfg := &Config{path: path, paths: paths}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cli: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", BackendLocal:
	case BackendS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("cli: storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("cli: unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Output.Format {
	case "", FormatYAML, FormatJSON, FormatRaw:
	default:
		return fmt.Errorf("cli: unknown output format %q", c.Output.Format)
	}
	return nil
}

// Save writes the config file, creating its directory.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cli: marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("cli: create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("cli: write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string { return c.path }

// OpenStore returns the configured file store.
func (c *Config) OpenStore() (storage.FileStore, error) {
	st := c.Storage
	if st.Backend == BackendS3 {
		client := storage.NewS3Client(storage.S3Config{
			Bucket:    st.Bucket,
			Prefix:    st.Prefix,
			Region:    st.Region,
			Endpoint:  st.Endpoint,
			AccessKey: st.AccessKey,
			SecretKey: st.SecretKey,
		})
		return storage.NewS3(client, st.Bucket, st.Prefix), nil
	}
	root := st.Root
	if root == "" {
		root = "."
	}
	return storage.NewLocal(root)
}

// OpenLibrary opens the configured song library.
func (c *Config) OpenLibrary(logger *slog.Logger) (*library.Library, error) {
	var backend library.Backend
	if c.Library.InMemory {
		backend = library.NewMemoryBackend()
	} else {
		dir := c.Library.Dir
		if dir == "" {
			dir = c.paths.LibraryDir()
		}
		b, err := library.NewBadgerBackend(library.BadgerOptions{Dir: dir, Logger: logger})
		if err != nil {
			return nil, err
		}
		backend = b
	}
	return library.New(backend, &library.Options{Logger: logger}), nil
}

// MaskSecret hides all but the ends of a credential for display.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
