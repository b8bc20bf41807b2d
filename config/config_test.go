package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vdparikh/sbox/aescbc"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SBOX_KEY_LENGTH", "SBOX_SALT", "SBOX_ITERATIONS", "SBOX_CANDIDATES",
		"SBOX_TOP", "SBOX_WORKERS", "SBOX_SEED", "SBOX_OUT", "SBOX_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.Cipher != want.Cipher || cfg.OutputDir != want.OutputDir || cfg.LogLevel != want.LogLevel {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if cfg.Explorer.Seed != nil {
		t.Errorf("expected nil seed, got %d", *cfg.Explorer.Seed)
	}
	if cfg.Cipher.Salt != string(aescbc.DefaultSalt) || cfg.Cipher.Iterations != aescbc.DefaultIterations {
		t.Errorf("cipher defaults do not match aescbc: %#v", cfg.Cipher)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sbox.yml")
	yamlConfig := []byte(`cipher:
  key_length: 16
  iterations: 1000
explorer:
  candidates: 80
  top: 5
  seed: 42
output_dir: /from-file
log_level: debug
`)
	if err := os.WriteFile(path, yamlConfig, 0o644); err != nil {
		t.Fatalf("write yaml config: %v", err)
	}

	t.Setenv("SBOX_TOP", "7")
	t.Setenv("SBOX_OUT", "/from-env")
	t.Setenv("SBOX_WORKERS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Cipher.KeyLength != 16 || cfg.Cipher.Iterations != 1000 {
		t.Errorf("cipher not read from file: %#v", cfg.Cipher)
	}
	if cfg.Cipher.Salt != string(aescbc.DefaultSalt) {
		t.Errorf("salt should keep its default, got %q", cfg.Cipher.Salt)
	}
	if cfg.Explorer.Candidates != 80 || cfg.Explorer.Top != 7 || cfg.Explorer.Workers != 3 {
		t.Errorf("explorer precedence wrong: %#v", cfg.Explorer)
	}
	if cfg.Explorer.Seed == nil || *cfg.Explorer.Seed != 42 {
		t.Errorf("seed not read from file: %v", cfg.Explorer.Seed)
	}
	if cfg.OutputDir != "/from-env" {
		t.Errorf("env should override output dir, got %q", cfg.OutputDir)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", cfg.Level())
	}
	if len(cfg.ExplorerOptions()) != 1 {
		t.Errorf("expected a workers option")
	}
	if len(cfg.CipherOptions()) != 3 {
		t.Errorf("expected three cipher options")
	}
}

func TestLoadClampsExplorer(t *testing.T) {
	clearEnv(t)
	t.Setenv("SBOX_CANDIDATES", "1000")
	t.Setenv("SBOX_TOP", "500")
	t.Setenv("SBOX_SEED", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Explorer.Candidates != 200 || cfg.Explorer.Top != 50 {
		t.Errorf("explorer not clamped: %#v", cfg.Explorer)
	}
	if cfg.Explorer.Seed == nil || *cfg.Explorer.Seed != 7 {
		t.Errorf("seed env override ignored: %v", cfg.Explorer.Seed)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad key length", env: map[string]string{"SBOX_KEY_LENGTH": "20"}},
		{name: "non-numeric int", env: map[string]string{"SBOX_CANDIDATES": "many"}},
		{name: "bad seed", env: map[string]string{"SBOX_SEED": "-1"}},
		{name: "bad level", env: map[string]string{"SBOX_LOG_LEVEL": "loud"}},
		{name: "zero iterations", env: map[string]string{"SBOX_ITERATIONS": "0"}},
		{name: "negative workers", env: map[string]string{"SBOX_WORKERS": "-2"}},
		{name: "malformed yaml", file: "cipher: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "bad.yml")
				if err := os.WriteFile(path, []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
