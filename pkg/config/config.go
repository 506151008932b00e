/*
Loads the generator configuration. Values are resolved in increasing priority:

	built-in defaults
	.quickerr.yaml in the package directory (optional)
	QUICKERR_* environment variables

Command-line flags are applied by the caller on top of the loaded value.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"gitlab.com/kyle_anderson/quickerr/pkg/emitter"
)

const (
	FileName  = ".quickerr.yaml"
	envPrefix = "QUICKERR_"
)

type Config struct {
	/* Inserted before ".go" in generated file names. */
	Suffix string `yaml:"suffix"`
	/* First line of generated files, without the "//" marker. */
	Header string `yaml:"header"`
	/* Number of files processed in parallel. Zero picks a value from the number of CPUs. */
	Workers int  `yaml:"workers"`
	Debug   bool `yaml:"debug"`
}

func Default() Config {
	return Config{
		Suffix: "gen",
		Header: emitter.DefaultHeader,
	}
}

var (
	suffixRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
	/* See https://go.dev/s/generatedcode. */
	headerRegex = regexp.MustCompile(`^Code generated .* DO NOT EDIT\.$`)
)

/* Error returned when a loaded value is unusable. */
type ErrInvalid struct {
	Field, Value, Reason string
}

func (e *ErrInvalid) Error() string {
	return fmt.Sprintf(`config: invalid %s %q: %s`, e.Field, e.Value, e.Reason)
}

func (c Config) Validate() error {
	if !suffixRegex.MatchString(c.Suffix) {
		return &ErrInvalid{"suffix", c.Suffix, "must match " + suffixRegex.String()}
	}
	if !headerRegex.MatchString(c.Header) {
		return &ErrInvalid{"header", c.Header, `must look like "Code generated ... DO NOT EDIT."`}
	}
	if c.Workers < 0 {
		return &ErrInvalid{"workers", strconv.Itoa(c.Workers), "must not be negative"}
	}
	return nil
}

/*
Loads the configuration for the package in dir. If path is empty, dir/.quickerr.yaml
is used when it exists; an explicitly given path must exist.
*/
func Load(dir, path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}
	if err := loadFile(&cfg, path, explicit); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf(`config.loadFile: failed to read %q: %w`, path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf(`config.loadFile: failed to parse %q: %w`, path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "SUFFIX"); ok {
		cfg.Suffix = v
	}
	if v, ok := lookup(envPrefix + "HEADER"); ok {
		cfg.Header = v
	}
	if v, ok := lookup(envPrefix + "WORKERS"); ok {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf(`config.applyEnv: failed to parse %sWORKERS: %w`, envPrefix, err)
		}
		cfg.Workers = workers
	}
	if v, ok := lookup(envPrefix + "DEBUG"); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf(`config.applyEnv: failed to parse %sDEBUG: %w`, envPrefix, err)
		}
		cfg.Debug = debug
	}
	return nil
}
