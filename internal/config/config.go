package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

const DefaultPath = "~/.config/mediasort/config.toml"

type Config struct {
	Hash          string   `toml:"hash"`
	FileTypes     []string `toml:"file_types"`
	QuarantineDir string   `toml:"quarantine_dir"`
	SkippedDir    string   `toml:"skipped_dir"`
	TokenLength   int      `toml:"token_length"`
	LogLevel      string   `toml:"log_level"`
	Progress      bool     `toml:"progress"`
}

func Default() Config {
	return Config{
		Hash:          "sha256",
		QuarantineDir: "to_check",
		SkippedDir:    "skipped",
		TokenLength:   8,
		LogLevel:      "info",
	}
}

// Load reads the TOML file at path on top of Default. A missing file is only
// an error when required is set; an empty path means DefaultPath.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to expand config path %v: %w", path, err)
	}

	file, err := os.Open(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %v: %w", expanded, err)
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) normalize() {
	c.Hash = strings.ToLower(strings.TrimSpace(c.Hash))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	types := make([]string, 0, len(c.FileTypes))
	for _, t := range c.FileTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		types = append(types, t)
	}
	c.FileTypes = types
}

// SetFileTypes replaces the extension filter with a comma-separated list.
func (c *Config) SetFileTypes(list string) {
	c.FileTypes = strings.Split(list, ",")
	c.normalize()
}

// SetHash sets the hash algorithm, e.g. from a command-line flag.
func (c *Config) SetHash(algorithm string) {
	c.Hash = algorithm
	c.normalize()
}

// SetLogLevel sets the log level, e.g. from a command-line flag.
func (c *Config) SetLogLevel(level string) {
	c.LogLevel = level
	c.normalize()
}

func (c *Config) Validate() error {
	switch c.Hash {
	case "sha256", "blake3":
	default:
		return fmt.Errorf("hash must be sha256 or blake3, got %q", c.Hash)
	}

	for name, dir := range map[string]string{"quarantine_dir": c.QuarantineDir, "skipped_dir": c.SkippedDir} {
		if dir == "" || dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("%v must be a plain directory name, got %q", name, dir)
		}
	}
	if c.QuarantineDir == c.SkippedDir {
		return fmt.Errorf("quarantine_dir and skipped_dir must differ, both are %q", c.QuarantineDir)
	}

	if c.TokenLength < 8 || c.TokenLength > 32 {
		return fmt.Errorf("token_length must be between 8 and 32, got %d", c.TokenLength)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	return nil
}
