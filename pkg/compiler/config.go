package compiler

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/infer"
)

// ConfigFileName is the project configuration file looked up by FindConfig.
const ConfigFileName = "oneinfer.toml"

// Config represents a oneinfer.toml project configuration file.
type Config struct {
	Inference InferenceConfig `toml:"inference"`
	Narrowing NarrowingConfig `toml:"narrowing"`

	// Jobs bounds how many units CompileAll analyzes at once. Zero means
	// one per CPU.
	Jobs int `toml:"jobs,omitempty"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

type InferenceConfig struct {
	// Plugins selects and orders the inference plugins by snake_case name,
	// e.g. "container_literals". Empty means the default chain.
	Plugins []string `toml:"plugins,omitempty"`

	// WarningsAsErrors fails a unit that finished with warnings.
	WarningsAsErrors bool `toml:"warnings_as_errors,omitempty"`
}

type NarrowingConfig struct {
	// Enabled defaults to true when the file does not mention it.
	Enabled *bool `toml:"enabled,omitempty"`

	// BeforeInference runs narrowing on the untyped tree so that inference
	// sees the inserted casts, and members of the narrowed type resolve.
	BeforeInference bool `toml:"before_inference,omitempty"`
}

// DefaultConfig runs every plugin and narrowing.
func DefaultConfig() *Config {
	return &Config{}
}

// NarrowingEnabled reports whether the narrowing pass runs.
func (c *Config) NarrowingEnabled() bool {
	return c.Narrowing.Enabled == nil || *c.Narrowing.Enabled
}

// Chain builds the plugin chain the configuration asks for.
func (c *Config) Chain() (*infer.Chain, error) {
	if len(c.Inference.Plugins) == 0 {
		return infer.DefaultChain(), nil
	}
	return infer.DefaultChain().Only(c.Inference.Plugins...)
}

func (c *Config) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// LoadConfig loads a oneinfer.toml file from the given path.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if _, err := config.Chain(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	config.Path = path
	return config, nil
}

// FindConfig looks for oneinfer.toml in dir and its parents, stopping at
// the root of the enclosing git checkout. It returns (nil, nil) when there
// is none.
func FindConfig(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		_, err := os.Stat(path)
		if err == nil {
			return LoadConfig(path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "looking for %s", path)
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// ResolveConfig picks the configuration for the units at unitPath, a unit
// file or a directory of units. An explicit path wins; a relative one that
// does not exist from the working directory is tried next to the units.
// Without one, the nearest oneinfer.toml above the units applies, falling
// back to the defaults.
func ResolveConfig(explicit, unitPath string) (*Config, error) {
	dir := unitPath
	if info, err := os.Stat(unitPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(unitPath)
	}

	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			if _, err := os.Stat(explicit); errors.Is(err, fs.ErrNotExist) {
				explicit = filepath.Join(dir, explicit)
			}
		}
		return LoadConfig(explicit)
	}

	config, err := FindConfig(dir)
	if err != nil || config != nil {
		return config, err
	}
	return DefaultConfig(), nil
}
