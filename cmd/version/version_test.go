package version

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}

	if cmd.Name != "version" {
		t.Errorf("command name = %q; want %q", cmd.Name, "version")
	}

	if cmd.Action == nil {
		t.Fatal("command action should not be nil")
	}

	if err := cmd.Action(context.Background(), &cli.Command{}); err != nil {
		t.Errorf("Action() returned unexpected error: %v", err)
	}
}

func TestString(t *testing.T) {
	got := String()

	if !strings.HasPrefix(got, "gorelay "+Version) {
		t.Errorf("String() = %q, want prefix %q", got, "gorelay "+Version)
	}
	if !strings.Contains(got, runtime.GOOS) {
		t.Errorf("String() = %q, want it to name the OS", got)
	}
}
