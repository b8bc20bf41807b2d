package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vdparikh/sbox"
	"github.com/vdparikh/sbox/aescbc"
	"github.com/vdparikh/sbox/subtle"
	"gopkg.in/yaml.v3"
)

// Config captures the sboxctl configuration resolved from defaults, an
// optional YAML file, and environment overrides.
type Config struct {
	Cipher    CipherConfig   `yaml:"cipher"`
	Explorer  ExplorerConfig `yaml:"explorer"`
	OutputDir string         `yaml:"output_dir"`
	LogLevel  string         `yaml:"log_level"`
}

// CipherConfig controls passphrase stretching for the cipher service.
type CipherConfig struct {
	KeyLength  int    `yaml:"key_length"`
	Salt       string `yaml:"salt"`
	Iterations int    `yaml:"iterations"`
}

// ExplorerConfig controls affine candidate exploration. A nil Seed means a
// fresh random seed per run.
type ExplorerConfig struct {
	Candidates int     `yaml:"candidates"`
	Top        int     `yaml:"top"`
	Workers    int     `yaml:"workers"`
	Seed       *uint64 `yaml:"seed,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cipher: CipherConfig{
			KeyLength:  aescbc.DefaultKeyLength,
			Salt:       string(aescbc.DefaultSalt),
			Iterations: aescbc.DefaultIterations,
		},
		Explorer: ExplorerConfig{
			Candidates: 50,
			Top:        10,
			Workers:    0,
		},
		OutputDir: "out",
		LogLevel:  "info",
	}
}

// Load resolves the configuration from defaults, the YAML file at path and
// SBOX_* environment variables, in increasing precedence. An empty path or a
// missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFileConfig(&cfg, data); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type fileConfig struct {
	Cipher *struct {
		KeyLength  *int    `yaml:"key_length"`
		Salt       *string `yaml:"salt"`
		Iterations *int    `yaml:"iterations"`
	} `yaml:"cipher"`
	Explorer *struct {
		Candidates *int    `yaml:"candidates"`
		Top        *int    `yaml:"top"`
		Workers    *int    `yaml:"workers"`
		Seed       *uint64 `yaml:"seed"`
	} `yaml:"explorer"`
	OutputDir *string `yaml:"output_dir"`
	LogLevel  *string `yaml:"log_level"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if c := fc.Cipher; c != nil {
		if c.KeyLength != nil {
			cfg.Cipher.KeyLength = *c.KeyLength
		}
		if c.Salt != nil {
			cfg.Cipher.Salt = *c.Salt
		}
		if c.Iterations != nil {
			cfg.Cipher.Iterations = *c.Iterations
		}
	}
	if e := fc.Explorer; e != nil {
		if e.Candidates != nil {
			cfg.Explorer.Candidates = *e.Candidates
		}
		if e.Top != nil {
			cfg.Explorer.Top = *e.Top
		}
		if e.Workers != nil {
			cfg.Explorer.Workers = *e.Workers
		}
		if e.Seed != nil {
			seed := *e.Seed
			cfg.Explorer.Seed = &seed
		}
	}
	if fc.OutputDir != nil {
		cfg.OutputDir = strings.TrimSpace(*fc.OutputDir)
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*fc.LogLevel)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"SBOX_KEY_LENGTH", &cfg.Cipher.KeyLength},
		{"SBOX_ITERATIONS", &cfg.Cipher.Iterations},
		{"SBOX_CANDIDATES", &cfg.Explorer.Candidates},
		{"SBOX_TOP", &cfg.Explorer.Top},
		{"SBOX_WORKERS", &cfg.Explorer.Workers},
	}
	for _, v := range ints {
		val := strings.TrimSpace(os.Getenv(v.name))
		if val == "" {
			continue
		}
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parse %s: %w", v.name, err)
		}
		*v.dst = parsed
	}

	if val := os.Getenv("SBOX_SALT"); val != "" {
		cfg.Cipher.Salt = val
	}
	if val := strings.TrimSpace(os.Getenv("SBOX_SEED")); val != "" {
		seed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("parse SBOX_SEED: %w", err)
		}
		cfg.Explorer.Seed = &seed
	}
	if val := strings.TrimSpace(os.Getenv("SBOX_OUT")); val != "" {
		cfg.OutputDir = val
	}
	if val := strings.TrimSpace(os.Getenv("SBOX_LOG_LEVEL")); val != "" {
		cfg.LogLevel = val
	}
	return nil
}

// Validate rejects unusable cipher settings and clamps the explorer request
// to the ceilings enforced by sbox.ClampRequest.
func (c *Config) Validate() error {
	if !subtle.ValidKeySize(c.Cipher.KeyLength) {
		return fmt.Errorf("cipher.key_length %d must be 16, 24, or 32", c.Cipher.KeyLength)
	}
	if c.Cipher.Iterations <= 0 {
		return fmt.Errorf("cipher.iterations must be positive, got %d", c.Cipher.Iterations)
	}
	if c.Cipher.Salt == "" {
		return errors.New("cipher.salt must not be empty")
	}
	if c.Explorer.Candidates < 0 || c.Explorer.Top < 0 || c.Explorer.Workers < 0 {
		return errors.New("explorer values must not be negative")
	}
	c.Explorer.Candidates, c.Explorer.Top = sbox.ClampRequest(c.Explorer.Candidates, c.Explorer.Top)
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// CipherOptions converts the cipher settings into aescbc service options.
func (c Config) CipherOptions() []aescbc.Option {
	return []aescbc.Option{
		aescbc.WithKeyLength(c.Cipher.KeyLength),
		aescbc.WithSalt([]byte(c.Cipher.Salt)),
		aescbc.WithIterations(c.Cipher.Iterations),
	}
}

// ExplorerOptions converts the explorer settings into sbox options. Zero
// workers keeps the explorer default of GOMAXPROCS.
func (c Config) ExplorerOptions() []sbox.ExplorerOption {
	var opts []sbox.ExplorerOption
	if c.Explorer.Workers > 0 {
		opts = append(opts, sbox.WithWorkers(c.Explorer.Workers))
	}
	return opts
}
