package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if !cfg.Transform.SkipNormalized {
		t.Error("SkipNormalized should be on by default")
	}
	if cfg.Transform.Selector != "" {
		t.Errorf("Selector = %q, want empty", cfg.Transform.Selector)
	}
	if cfg.Output.Suffix != ".matrix3d.css" {
		t.Errorf("Suffix = %q, want .matrix3d.css", cfg.Output.Suffix)
	}
	if cfg.Output.BackupSuffix != ".backup" {
		t.Errorf("BackupSuffix = %q, want .backup", cfg.Output.BackupSuffix)
	}
	if !cfg.Output.Backup || !cfg.Output.Pretty {
		t.Errorf("unexpected output defaults %+v", cfg.Output)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `version: 1
transform:
  skip_normalized: false
  selector: .card
output:
  suffix: .3d.css
  backup_suffix: .orig
  backup: false
  pretty: false
  workers: 3
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.ToSlash(filepath.Join(tmpDir, "logs", "test.log"))+`
    mode: overwrite
reporting:
  destination: `+filepath.ToSlash(filepath.Join(tmpDir, "report.zip"))+`
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Transform.SkipNormalized {
		t.Error("Expected SkipNormalized to be false")
	}
	if cfg.Transform.Selector != ".card" {
		t.Errorf("Selector = %q, want .card", cfg.Transform.Selector)
	}
	if cfg.Output.Suffix != ".3d.css" || cfg.Output.BackupSuffix != ".orig" {
		t.Errorf("unexpected suffixes %+v", cfg.Output)
	}
	if cfg.Output.Backup || cfg.Output.Pretty {
		t.Errorf("unexpected output flags %+v", cfg.Output)
	}
	if cfg.Output.EffectiveWorkers() != 3 {
		t.Errorf("EffectiveWorkers() = %d, want 3", cfg.Output.EffectiveWorkers())
	}
	if cfg.Logging.FileLogger.Mode != "overwrite" {
		t.Errorf("Mode = %q, want overwrite", cfg.Logging.FileLogger.Mode)
	}
	// sanitizer makes sure log directory exists
	if _, err := os.Stat(filepath.Join(tmpDir, "logs")); err != nil {
		t.Errorf("log directory was not created: %v", err)
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	configPath := writeConfig(t, `version: 1
transform:
  selector: .hero
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Transform.Selector != ".hero" {
		t.Errorf("Selector = %q, want .hero", cfg.Transform.Selector)
	}
	// values not present in the file come from the template
	if !cfg.Transform.SkipNormalized {
		t.Error("SkipNormalized default lost")
	}
	if cfg.Output.Suffix != ".matrix3d.css" {
		t.Errorf("Suffix default lost, got %q", cfg.Output.Suffix)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ntransform:\n  skip_normalized: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"invalid version", "version: 2\n"},
		{"bad suffix", "version: 1\noutput:\n  suffix: .txt\n"},
		{"same suffixes", "version: 1\noutput:\n  suffix: .x.css\n  backup_suffix: .x.css\n"},
		{"negative workers", "version: 1\noutput:\n  workers: -1\n"},
		{"bad console level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestOutputConfig_EffectiveWorkers(t *testing.T) {
	conf := OutputConfig{}
	if got := conf.EffectiveWorkers(); got != runtime.NumCPU() {
		t.Errorf("EffectiveWorkers() = %d, want %d", got, runtime.NumCPU())
	}
	conf.Workers = 2
	if got := conf.EffectiveWorkers(); got != 2 {
		t.Errorf("EffectiveWorkers() = %d, want 2", got)
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version:   1,
		Transform: TransformConfig{SkipNormalized: true, Selector: ".card"},
		Output:    OutputConfig{Suffix: ".matrix3d.css", BackupSuffix: ".backup", Workers: 4},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
	if cfg2.Transform != cfg.Transform {
		t.Errorf("Transform mismatch after dump/load: got %+v, want %+v", cfg2.Transform, cfg.Transform)
	}
	if cfg2.Output != cfg.Output {
		t.Errorf("Output mismatch after dump/load: got %+v, want %+v", cfg2.Output, cfg.Output)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		result, err := unmarshalConfig([]byte(`version: 1`), &Config{}, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}
		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}
		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := unmarshalConfig([]byte(`invalid: [yaml`), &Config{}, false); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	// version: 99 will fail validation (validate:"eq=1").
	data := []byte("version: 99\n")

	_, err := unmarshalConfig(data, &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error (errors.Unwrap non-nil), got bare error: %v", err)
	}
}
