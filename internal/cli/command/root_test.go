package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/infra/buildinfo"
)

func TestApp(t *testing.T) {
	app := App()

	if app.Name != "graphdev" {
		t.Errorf("Name = %q, want graphdev", app.Name)
	}

	commands := make(map[string]bool)
	for _, cmd := range app.Commands {
		commands[cmd.Name] = true
	}
	for _, name := range []string{"dev", "session", "config", "version"} {
		if !commands[name] {
			t.Errorf("missing command: %s", name)
		}
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, name := range []string{"config", "socket", "log-level", "log-format", "log-backend", "output"} {
		if !flags[name] {
			t.Errorf("missing global flag: %s", name)
		}
	}
}

func TestFlagKeysCoverGlobalFlags(t *testing.T) {
	for _, f := range globalFlags() {
		name := f.Names()[0]
		if name == "config" {
			continue
		}
		if _, ok := flagKeys[name]; !ok {
			t.Errorf("global flag %q has no config key", name)
		}
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	isolate(t)

	out, err := run(t, context.Background(), "-o", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	var info buildinfo.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if info.Version != buildinfo.Version {
		t.Errorf("Version = %q, want %q", info.Version, buildinfo.Version)
	}
}

func TestSetup_InvalidOutput(t *testing.T) {
	isolate(t)

	_, err := run(t, context.Background(), "--output", "xml", "version")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestSetup_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("GRAPHDEV_OUTPUT_FORMAT", "yaml")

	out, err := run(t, context.Background(), "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "version: ") {
		t.Errorf("expected YAML output from env, got:\n%s", out)
	}
}

func TestConfigShow(t *testing.T) {
	isolate(t)

	out, err := run(t, context.Background(), "--socket", "/tmp/custom.sock", "-o", "yaml", "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"socket: /tmp/custom.sock", "heartbeat: 1s", "format: yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{"no leader", domain.ErrConnectionUnavailable, string(domain.SuggestionStartLeader)},
		{"version", domain.ErrVersionMismatch.WithDetails("x"), string(domain.SuggestionAlignVersions)},
		{"no response", domain.ErrNoResponse, string(domain.SuggestionSubmitIssue)},
		{"bad argument", domain.ErrInvalidArgument.WithDetails("name"), ""},
		{"missing flag", domain.ErrMissingArgument.WithDetails("--name is required"), ""},
		{"usage error", usageError(nil, errors.New("flag provided but not defined: -bogus"), false), ""},
		{"unclassified", errors.New("accept: too many open files"), string(domain.SuggestionSubmitIssue)},
		{"wrapped unclassified", fmt.Errorf("load schema: %w", errors.New("EOF")), string(domain.SuggestionSubmitIssue)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)

			out := buf.String()
			if !strings.HasPrefix(out, "error: "+tt.err.Error()) {
				t.Errorf("output = %q", out)
			}
			if tt.wantSuggestion == "" {
				if strings.Count(out, "\n") != 1 {
					t.Errorf("unexpected suggestion in %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.wantSuggestion) {
				t.Errorf("output %q missing suggestion %q", out, tt.wantSuggestion)
			}
		})
	}
}

func TestUsageErrorsAreArgumentErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"global flag", []string{"--bogus", "version"}},
		{"command flag", []string{"dev", "--bogus"}},
		{"subcommand flag", []string{"session", "list", "--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, context.Background(), tt.args...)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
			if hint(err) != domain.SuggestionNone {
				t.Errorf("hint() = %q, want none", hint(err))
			}
		})
	}
}
