package cargotask

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/cargotask/config"
)

func TestRunConfigCommand_Show(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer

	exitCode := RunConfigCommand(&stdout, &stderr, t.TempDir(), []string{})

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d. stderr: %s", exitCode, stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{"Effective cargotask configuration", "library_dir: super_native_extensions", "failure_policy: warn", `"**/*.rs"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestRunConfigCommand_ShowProjectFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	project := t.TempDir()
	if err := os.WriteFile(config.ProjectConfigPath(project), []byte("env:\n  - A=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := RunConfigCommand(&stdout, &stderr, project, []string{"show"}); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "# Loaded from: "+config.ProjectConfigPath(project)) {
		t.Errorf("missing loaded-from line: %s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "  - A=1") {
		t.Errorf("missing env entry: %s", stdout.String())
	}
}

func TestRunConfigCommand_Path(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	var stdout, stderr bytes.Buffer

	exitCode := RunConfigCommand(&stdout, &stderr, t.TempDir(), []string{"path"})

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout.String(), filepath.Join(xdg, "cargotask", "config.yaml")) {
		t.Errorf("Expected user config path, got: %s", stdout.String())
	}
}

func TestRunConfigCommand_Init(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	var stdout, stderr bytes.Buffer
	if code := RunConfigCommand(&stdout, &stderr, t.TempDir(), []string{"init"}); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(xdg, "cargotask", "config.yaml")); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	stdout.Reset()
	stderr.Reset()
	if code := RunConfigCommand(&stdout, &stderr, t.TempDir(), []string{"init"}); code != 1 {
		t.Errorf("second init: expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %s", stderr.String())
	}
}

func TestRunConfigCommand_Unknown(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := RunConfigCommand(&stdout, &stderr, t.TempDir(), []string{"bogus"})

	if exitCode != 2 {
		t.Errorf("Expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(stderr.String(), "unknown config subcommand") {
		t.Errorf("Expected unknown subcommand error, got: %s", stderr.String())
	}
}

func TestRunConfigCommand_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer

	exitCode := RunConfigCommand(&stdout, &stderr, t.TempDir(), []string{"-h"})

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout.String(), "Manage cargotask configuration") {
		t.Errorf("Expected usage, got: %s", stdout.String())
	}
}
