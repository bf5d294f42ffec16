package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/scene"
)

const menuJSON = `{
  "name": "main-menu",
  "panels": [
    {"name": "HUD", "widgets": [
      {"id": "bg",    "depth": 0, "material": "ui", "texture": "atlas", "rect": {"x": 0,  "y": 0,  "w": 100, "h": 100}},
      {"id": "icon",  "depth": 1, "material": "icons", "rect": {"x": 10, "y": 10, "w": 10, "h": 10}},
      {"id": "frame", "depth": 2, "material": "ui", "texture": "atlas", "rect": {"x": 50, "y": 50, "w": 10, "h": 10}},
      {"id": "badge", "depth": 3, "material": "icons", "rect": {"x": 70, "y": 70, "w": 10, "h": 10}}
    ]},
    {"name": "Footer", "widgets": [
      {"id": "bar", "depth": 0, "material": "ui", "rect": {"x": 0, "y": 0, "w": 100, "h": 10}}
    ]}
  ]
}`

// setupEnv isolates config and cache directories and writes the menu scene.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "menu.json")
	if err := os.WriteFile(path, []byte(menuJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOptimizeCommand(t *testing.T) {
	input := setupEnv(t)
	report := filepath.Join(t.TempDir(), "report.json")

	if _, err := execute(t, "optimize", input, "--report", report); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	out, err := scene.ImportJSON(defaultOutputPath(input))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	hud := out.Panel("HUD")
	want := map[string]int{"bg": 0, "frame": 1, "icon": 2, "badge": 3}
	for id, depth := range want {
		if got := hud.Widget(id).Depth; got != depth {
			t.Errorf("%s depth = %d, want %d", id, got, depth)
		}
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"after": 3`) {
		t.Errorf("report does not record 3 draw calls after: %s", data)
	}

	in, _ := scene.ImportJSON(input)
	if in.Panel("HUD").Widget("frame").Depth != 2 {
		t.Error("input file was modified without --in-place")
	}
}

func TestOptimizeInPlace(t *testing.T) {
	input := setupEnv(t)
	if _, err := execute(t, "optimize", input, "--in-place", "--panel", "HUD"); err != nil {
		t.Fatalf("optimize: %v", err)
	}
	sc, err := scene.ImportJSON(input)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Panel("HUD").Widget("frame").Depth != 1 {
		t.Error("--in-place did not rewrite the input")
	}
}

func TestOptimizeFlagErrors(t *testing.T) {
	input := setupEnv(t)

	if _, err := execute(t, "optimize", input, "--in-place", "-o", "x.json"); err == nil {
		t.Error("--in-place with -o should fail")
	}
	if _, err := execute(t, "optimize", filepath.Join(t.TempDir(), "missing.json")); !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("missing input: err = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := execute(t, "optimize", input, "--panel", "Nope"); !apperrors.Is(err, apperrors.ErrCodePanelNotFound) {
		t.Errorf("unknown panel: err = %v, want PANEL_NOT_FOUND", err)
	}
}

func TestCountCommandJSON(t *testing.T) {
	input := setupEnv(t)
	out, err := execute(t, "count", input, "--json")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !strings.Contains(out, `"total": 5`) {
		t.Errorf("count output = %s, want total 5", out)
	}
}

func TestGraphCommandDOT(t *testing.T) {
	input := setupEnv(t)
	out, err := execute(t, "graph", input, "--panel", "HUD")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	for _, want := range []string{"digraph Batch", "n0 -> n1", "n0 -> n3", `"bg`} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "n1 -> n2") {
		t.Error("icon and frame do not overlap and should not be connected")
	}
	if strings.Contains(out, "Material:") {
		t.Errorf("batch keys shown without --keys:\n%s", out)
	}

	out, err = execute(t, "graph", input, "--panel", "HUD", "--keys")
	if err != nil {
		t.Fatalf("graph --keys: %v", err)
	}
	if !strings.Contains(out, "Material:ui;Texture:atlas;Shader:") {
		t.Errorf("DOT output missing batch key with --keys:\n%s", out)
	}

	if _, err := execute(t, "graph", input); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("graph without --panel on a multi-panel scene: err = %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `backend = "file"`) {
		t.Errorf("config show output:\n%s", out)
	}
}

func TestCachePathAndClear(t *testing.T) {
	input := setupEnv(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	dir, _ := cacheDir()
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	if _, err := execute(t, "optimize", input); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) == 0 {
		t.Fatal("optimize did not populate the cache")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the program name")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"menu.json":    "menu.optimized.json",
		"dir/hud.json": "dir/hud.optimized.json",
		"noext":        "noext.optimized",
	}
	for in, want := range tests {
		if got := defaultOutputPath(in); got != want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}
