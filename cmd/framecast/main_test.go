package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunFramesPrintsSmartList(t *testing.T) {
	var out bytes.Buffer
	if err := run("frames", []string{"-check", "1001-1005"}, &out); err != nil {
		t.Fatalf("frames: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "1001,1005,1003,1002,1004" {
		t.Fatalf("frames output = %q", got)
	}

	out.Reset()
	if err := run("frames", []string{"-task-size", "3", "1001-1010"}, &out); err != nil {
		t.Fatalf("frames: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "1001-1003,1010-1010,1007-1009,1004-1006" {
		t.Fatalf("frames output = %q", got)
	}
}

func TestRunFramesRejectsBadInput(t *testing.T) {
	cases := [][]string{
		{"abc"},
		{"-task-size", "0", "1001-1010"},
		{"-rounding", "up", "1001-1010"},
		{},
	}
	for _, args := range cases {
		if err := run("frames", args, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run("render", nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

func TestKeyValueFlagKeepsOrderAndReplaces(t *testing.T) {
	var kv keyValueFlag
	for _, v := range []string{"ExtraInfo0=shot010", "MachineLimit=4", "ExtraInfo0=shot020"} {
		if err := kv.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	if len(kv) != 2 || kv[0].Value != "shot020" || kv[1].Key != "MachineLimit" {
		t.Fatalf("unexpected flags %+v", kv)
	}
	if kv.String() != "ExtraInfo0=shot020, MachineLimit=4" {
		t.Fatalf("String() = %q", kv.String())
	}
	if err := kv.Set("novalue"); err == nil {
		t.Fatalf("expected error for missing =")
	}
	if err := kv.Set("=value"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestRunSubmitDryRun(t *testing.T) {
	t.Setenv("DEADLINE_PATH", "")
	t.Setenv("FRAMECAST_PUBLISH_DSN", "")
	projectDir := t.TempDir()
	scene := filepath.Join(projectDir, "shot010_lighting.v003.hip")
	if err := os.WriteFile(scene, []byte("hip"), 0o644); err != nil {
		t.Fatal(err)
	}
	nodeYAML := `
name: beauty
path: /out/sgtk_ris1
network: rop
scene: ` + filepath.ToSlash(scene) + `
parms:
  trange: 1
  f1: 1001
  f2: 1005
  picture: /renders/shot010/beauty/shot010_beauty.1001.exr
`
	if err := run("init", []string{"-project", projectDir}, &bytes.Buffer{}); err != nil {
		t.Fatalf("init: %v", err)
	}
	nodeFile := filepath.Join(projectDir, ".framecast", "nodes", "beauty.yaml")
	if err := os.WriteFile(nodeFile, []byte(nodeYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	args := []string{
		"-project", projectDir,
		"-node", "beauty",
		"-priority", "70",
		"-mode", "light",
		"-houdini-version", "20.5",
		"-set", "ExtraInfo0=shot010",
		"-dry-run",
	}
	if err := run("submit", args, &out); err != nil {
		t.Fatalf("submit: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Frames=1001,1005,1003,1002,1004",
		"Priority=70",
		"ConcurrentTasks=3",
		"Name=shot010_lighting (beauty)",
		"ExtraInfo0=shot010",
		"OutputDriver=/out/sgtk_ris1/ris1",
		"Version=20.5",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("dry run output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "ChunkSize=") {
		t.Fatalf("dry run must leave ChunkSize unset:\n%s", text)
	}
}

func TestRunHistoryEmpty(t *testing.T) {
	t.Setenv("DEADLINE_PATH", "")
	t.Setenv("FRAMECAST_PUBLISH_DSN", "")
	var out bytes.Buffer
	if err := run("history", []string{"-project", t.TempDir()}, &out); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out.String(), "No submissions yet.") {
		t.Fatalf("unexpected history output %q", out.String())
	}
}

func TestRunDenoiseRequiresOutputs(t *testing.T) {
	if err := run("denoise", []string{"-start", "1", "-end", "2"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error without outputs")
	}
}

func TestRunDenoiseLogsToProject(t *testing.T) {
	t.Setenv("DEADLINE_PATH", "")
	t.Setenv("FRAMECAST_PUBLISH_DSN", "")
	projectDir := t.TempDir()
	denoiseDir := filepath.Join(t.TempDir(), "denoise")
	if err := os.MkdirAll(denoiseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(denoiseDir, "shot_beauty_.1001.exr"), []byte("exr"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	args := []string{"-project", projectDir, "-dir", denoiseDir, "-file", "shot_denoise_.%04d.exr", "-start", "1001", "-end", "1001"}
	if err := run("denoise", args, &out); err != nil {
		t.Fatalf("denoise: %v", err)
	}
	if !strings.Contains(out.String(), "Renamed 1 frame(s)") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(denoiseDir, "shot_denoise_.1001.exr")); err != nil {
		t.Fatalf("expected renamed frame: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, ".framecast", "logs", "framecast.log"))
	if err != nil {
		t.Fatalf("read project log: %v", err)
	}
	if !strings.Contains(string(data), "[denoise]") {
		t.Fatalf("expected scoped denoise entries in project log:\n%s", data)
	}
}
