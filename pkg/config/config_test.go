package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Analysis.Workers != 0 {
		t.Errorf("Analysis.Workers = %d, want 0", cfg.Analysis.Workers)
	}
	if len(cfg.Analysis.Extensions) != 3 {
		t.Errorf("Analysis.Extensions = %v, want .py .pyw .pyi", cfg.Analysis.Extensions)
	}

	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}

	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pysentry.toml")

	content := `
[analysis]
workers = 4
max_file_size = 1048576

[exclude]
dirs = [".git", "migrations"]
patterns = ["*_pb2.py"]

[severity]
UnusedVariable = "MEDIUM"

[fixer]
rules = "rules.yaml"

[output]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.Workers != 4 {
		t.Errorf("Analysis.Workers = %d, want 4", cfg.Analysis.Workers)
	}
	if cfg.Analysis.MaxFileSize != 1048576 {
		t.Errorf("Analysis.MaxFileSize = %d, want 1048576", cfg.Analysis.MaxFileSize)
	}
	if cfg.Severity["UnusedVariable"] != "MEDIUM" {
		t.Errorf("Severity[UnusedVariable] = %q, want MEDIUM", cfg.Severity["UnusedVariable"])
	}
	if cfg.Fixer.Rules != "rules.yaml" {
		t.Errorf("Fixer.Rules = %q, want rules.yaml", cfg.Fixer.Rules)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pysentry.yaml")

	content := `
analysis:
  workers: 2
output:
  format: markdown
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.Workers != 2 {
		t.Errorf("Analysis.Workers = %d, want 2", cfg.Analysis.Workers)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pysentry.json")

	content := `{
  "analysis": {"workers": 8},
  "output": {"format": "sarif"}
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.Workers != 8 {
		t.Errorf("Analysis.Workers = %d, want 8", cfg.Analysis.Workers)
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("Output.Format = %s, want sarif", cfg.Output.Format)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/pysentry.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pysentry.toml")

	content := `[analysis
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("LoadOrDefault() returned non-default format: %s", cfg.Output.Format)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[analysis]
workers = 99
`
	if err := os.MkdirAll(filepath.Join(tmpDir, ".pysentry"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".pysentry", "pysentry.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Chdir(tmpDir)

	cfg := LoadOrDefault()
	if cfg.Analysis.Workers != 99 {
		t.Errorf("LoadOrDefault() should load from file, got Workers=%d", cfg.Analysis.Workers)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		result, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if result.Source != "" {
			t.Errorf("Source = %q, want empty", result.Source)
		}
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.toml")
		if err := os.WriteFile(path, []byte("[output]\nformat = \"toon\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		result, err := LoadConfig(WithPath(path))
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}
		if result.Source != path {
			t.Errorf("Source = %q, want %q", result.Source, path)
		}
		if result.Config.Output.Format != "toon" {
			t.Errorf("Output.Format = %q, want toon", result.Config.Output.Format)
		}
	})

	t.Run("invalid values are reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[output]\nformat = \"html\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfig(WithPath(path))
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("LoadConfig() error = %v, want ErrUnknownFormat", err)
		}
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Workers = -1
	cfg.Severity["UnusedVariable"] = "urgent"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject negative workers and unknown severities")
	}

	cfg = DefaultConfig()
	cfg.Severity["UnusedVariable"] = "high"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if got := cfg.SeverityOverrides()["UnusedVariable"]; got != "HIGH" {
		t.Errorf("SeverityOverrides() = %q, want HIGH", got)
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*_pb2.py")

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(".git", "hooks", "pre-commit.py"), true},
		{filepath.Join("pkg", "__pycache__", "mod.py"), true},
		{filepath.Join(".venv", "lib", "site.py"), true},
		{"service_pb2.py", true},
		{"main.py", false},
		{filepath.Join("pkg", "util", "helper.py"), false},
		{filepath.Join("pkg", "venv_tools.py"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
