package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/cranestack/pkg/errors"
	"github.com/matzehuels/cranestack/pkg/pipeline"
)

// isolate points the config and cache directories at fresh temp dirs and
// returns the cache home.
func isolate(t *testing.T) string {
	t.Helper()
	cacheHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return cacheHome
}

// execute runs the CLI and returns what the command wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	isolate(t)
	path := writeInput(t, "input.txt", sampleInput)

	out, err := execute(t, "", "run", path, "--no-cache")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	for _, want := range []string{"single: CMZ", "block: MCD", "4 instructions"} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "single:") > strings.Index(out, "block:") {
		t.Errorf("modes should print in default order:\n%s", out)
	}
}

func TestRunCommandStdinJSON(t *testing.T) {
	isolate(t)
	out, err := execute(t, sampleInput, "run", "-", "--json", "--mode", "block", "--no-cache")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	var result pipeline.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("run --json output is not a Result: %v\n%s", err, out)
	}
	if len(result.Tops) != 1 || result.Tops["block"] != "MCD" {
		t.Errorf("Tops = %v, want only block:MCD", result.Tops)
	}
}

func TestRunCommandErrors(t *testing.T) {
	isolate(t)
	bad := writeInput(t, "bad.txt", "[A]\n 1\n\nmove 2 from 1 to 1\n")

	_, err := execute(t, "", "run", bad, "--no-cache")
	if !errs.Is(err, errs.ErrCodeStackUnderflow) {
		t.Errorf("run error = %v, want STACK_UNDERFLOW", err)
	}

	_, err = execute(t, "", "run", filepath.Join(t.TempDir(), "missing.txt"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("run error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = execute(t, sampleInput, "run", "-", "--mode", "sideways")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("run error = %v, want INVALID_INPUT", err)
	}
}

func TestParseCommand(t *testing.T) {
	isolate(t)
	path := writeInput(t, "input.txt", sampleInput)

	out, err := execute(t, "", "parse", path)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	for _, want := range []string{"[Z] [M] [P]", " 1   2   3", "3 columns", "4 instructions"} {
		if !strings.Contains(out, want) {
			t.Errorf("parse output missing %q:\n%s", want, out)
		}
	}
}

func TestParseJSONFeedsRun(t *testing.T) {
	isolate(t)
	path := writeInput(t, "input.txt", sampleInput)
	plan := filepath.Join(t.TempDir(), "plan.json")

	if _, err := execute(t, "", "parse", path, "--json", "-o", plan); err != nil {
		t.Fatalf("parse --json error: %v", err)
	}

	out, err := execute(t, "", "run", plan, "--no-cache")
	if err != nil {
		t.Fatalf("run plan.json error: %v", err)
	}
	if !strings.Contains(out, "single: CMZ") || !strings.Contains(out, "block: MCD") {
		t.Errorf("run on exported plan:\n%s", out)
	}
}

func TestCacheClearCommand(t *testing.T) {
	cacheHome := isolate(t)
	path := writeInput(t, "input.txt", sampleInput)

	if _, err := execute(t, "", "run", path); err != nil {
		t.Fatalf("run error: %v", err)
	}
	out, err := execute(t, "", "run", path)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second run should report a cache hit:\n%s", out)
	}

	out, err = execute(t, "", "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("cache clear output:\n%s", out)
	}

	out, err = execute(t, "", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), filepath.Join(cacheHome, appName))
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the binary name")
	}
}
