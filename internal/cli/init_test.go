package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "swagger2rtk.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	for _, want := range []string{"swagger2rtk configuration", "# baseClientExport: emptySplitApi", "CODEGEN_HOOKS"} {
		if !strings.Contains(s, want) {
			t.Fatalf("config missing %q: %s", want, s)
		}
	}
}

func TestInit_SampleKeysAreAccepted(t *testing.T) {
	t.Parallel()
	// Uncommenting every key in the sample must yield a loadable config.
	var lines []string
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") && !strings.Contains(line, "(") {
			lines = append(lines, strings.TrimPrefix(line, "# "))
		}
	}
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := defaultGenerateConfig()
	if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample keys rejected: %v\n%s", err, strings.Join(lines, "\n"))
	}
	if cfg.Input != "http://localhost:3000/api-docs-json" {
		t.Fatalf("input: got %q", cfg.Input)
	}
	if want := []string{"Users", "Orders"}; !equalStringSlices(cfg.IncludeTags, want) {
		t.Fatalf("include tags: got %v", cfg.IncludeTags)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) == "x" {
		t.Fatalf("expected --force to overwrite the file")
	}
}
