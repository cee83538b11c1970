package main

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "0.1.0-test"
	GitCommit = "abc123"

	stdout, _, code := run(t, "", "version")
	if code != 0 {
		t.Fatalf("version exit = %d", code)
	}
	for _, want := range []string{"Warden 0.1.0-test", "Git Commit: abc123", "Go Version:", "OS/Arch:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"check", "reset", "score", "state", "catalog", "trail", "serve", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
