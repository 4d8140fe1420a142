package scenariolint

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeDefinitions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objectives.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write definitions: %v", err)
	}
	return path
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("scenario-lint", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-file", "objectives.json", "-strict"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.File != "objectives.json" {
		t.Errorf("file = %q", cfg.File)
	}
	if !cfg.Strict {
		t.Error("strict should be set")
	}
	if cfg.ScriptDeadline != 100*time.Millisecond {
		t.Errorf("script deadline = %v, want default 100ms", cfg.ScriptDeadline)
	}
}

func TestRunValidDefinitions(t *testing.T) {
	path := writeDefinitions(t, `[
		{"id": "obj-1", "type": "kill_all_monsters", "track_progress": true},
		{"id": "obj-2", "type": "kill_boss", "params": {"monster_id": "boss-1"},
		 "milestones": [{"percent": 50, "message": "Halfway"}]},
		{"id": "obj-3", "type": "custom", "custom_function": "return context.round > 3"}
	]`)

	var out, errOut bytes.Buffer
	if err := Run(Config{File: path, ScriptDeadline: 100 * time.Millisecond}, &out, &errOut); err != nil {
		t.Fatalf("Run() error = %v\nstderr: %s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "checked 3 definitions, 0 problems") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunReportsProblems(t *testing.T) {
	path := writeDefinitions(t, `[
		{"id": "obj-1", "type": "kill_boss"},
		{"id": "obj-2", "type": "custom", "custom_function": "return eval(\"1\")"},
		{"id": "obj-3", "type": "teleport_everyone"},
		{"id": "obj-4", "type": "no_damage", "milestones": [{"percent": 33}]}
	]`)

	var out, errOut bytes.Buffer
	err := Run(Config{File: path, ScriptDeadline: 100 * time.Millisecond}, &out, &errOut)
	if err == nil {
		t.Fatal("Run() expected error for invalid definitions")
	}

	stderr := errOut.String()
	for _, want := range []string{
		"kill_boss needs monster_id",
		"script rejected",
		"unknown objective type",
		"milestone percent 33",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunRequiresFile(t *testing.T) {
	if err := Run(Config{}, nil, nil); err == nil {
		t.Fatal("Run() expected error for missing file")
	}
}

func TestRunEmptyDefinitions(t *testing.T) {
	path := writeDefinitions(t, `[]`)
	if err := Run(Config{File: path}, nil, nil); err == nil {
		t.Fatal("Run() expected error for empty definitions")
	}
}
