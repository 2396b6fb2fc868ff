package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/circuitdraw/internal/config"
	"github.com/matzehuels/circuitdraw/pkg/schematic"
)

const blinkNetlist = `{
  "components": [
    {"id": "U1", "type": "microcontroller", "model": "Arduino Uno"},
    {"id": "R1", "type": "resistor", "value": "220Ω"},
    {"id": "D1", "type": "led", "value": "red"}
  ],
  "connections": [
    ["U1:D13", "R1:1"],
    ["R1:2", "D1:anode"],
    ["D1:cathode", "U1:GND"]
  ]
}`

// isolate points every directory the CLI touches at a temp dir and clears
// the environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, env := range []string{config.EnvAPIKey, config.EnvRedisURL, config.EnvMongoURI, config.EnvPublicURL, config.EnvSigningKey} {
		t.Setenv(env, "")
	}
	return dir
}

func writeNetlist(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "blink.json")
	if err := os.WriteFile(path, []byte(blinkNetlist), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns what it wrote to
// its output writer.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	input := writeNetlist(t, dir)

	out, err := execute(t, "layout", input)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var scene schematic.Scene
	if err := json.Unmarshal([]byte(out), &scene); err != nil {
		t.Fatalf("layout output is not a scene: %v\n%s", err, out)
	}
	if len(scene.Wires) != 3 {
		t.Errorf("wires = %d, want 3", len(scene.Wires))
	}
	if len(scene.Skipped) != 0 {
		t.Errorf("skipped = %v, want none", scene.Skipped)
	}
}

func TestLayoutCommandMissingFile(t *testing.T) {
	dir := isolate(t)
	if _, err := execute(t, "layout", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing netlist")
	}
}

func TestInspectCommand(t *testing.T) {
	dir := isolate(t)
	input := writeNetlist(t, dir)

	out, err := execute(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"graph G {", `"U1" -- "R1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "inspect", "-f", "gif", input); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	input := writeNetlist(t, dir)
	output := filepath.Join(dir, "blink.svg")

	if _, err := execute(t, "render", input, "-o", output, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("render output is not an SVG document")
	}
}

func TestGenerateCommandJSON(t *testing.T) {
	dir := isolate(t)
	output := filepath.Join(dir, "led.png")
	netlistOut := filepath.Join(dir, "led.json")

	out, err := execute(t, "generate", "Arduino", "blink", "an", "LED", "on", "D13",
		"--fallback", "--json", "-o", output, "--netlist-out", netlistOut)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var res generateResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if res.Source != "rules" {
		t.Errorf("source = %q, want rules", res.Source)
	}
	if res.ImagePath != output {
		t.Errorf("image_path = %q, want %q", res.ImagePath, output)
	}
	if res.RecordID == "" {
		t.Error("run should be recorded in history")
	}
	if res.ArduinoCode == "" || res.Explanation == "" {
		t.Error("texts should fall back to templates without a model")
	}

	for _, path := range []string{output, strings.TrimSuffix(output, ".png") + ".ino", netlistOut} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", path, err)
		}
	}

	shown, err := execute(t, "history", "show", res.RecordID, "--json")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(shown, res.RecordID) {
		t.Errorf("history show output missing id:\n%s", shown)
	}

	if _, err := execute(t, "history", "delete", res.RecordID); err != nil {
		t.Fatalf("history delete: %v", err)
	}
	if _, err := execute(t, "history", "show", res.RecordID); err == nil {
		t.Error("deleted record should not be found")
	}
}

func TestExamplesList(t *testing.T) {
	isolate(t)
	out, err := execute(t, "examples", "--list")
	if err != nil {
		t.Fatalf("examples --list: %v", err)
	}
	for _, ex := range examples {
		if !strings.Contains(out, ex.Name) {
			t.Errorf("list missing %q", ex.Name)
		}
	}

	if _, err := execute(t, "examples", "nope"); err == nil {
		t.Error("expected an error for an unknown example")
	}
}

func TestCachePath(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(dir, "cache", appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCacheClear(t *testing.T) {
	dir := isolate(t)
	input := writeNetlist(t, dir)
	if _, err := execute(t, "render", input, "-o", filepath.Join(dir, "blink.png")); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	var left []string
	_ = filepath.WalkDir(filepath.Join(dir, "cache", appName), func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".json") {
			left = append(left, path)
		}
		return nil
	})
	if len(left) != 0 {
		t.Errorf("cache entries survived clear: %v", left)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the program name")
	}
}

func TestBadConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"memcached\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", path, "cache", "path"); err == nil {
		t.Error("expected an invalid config error")
	}
}
