package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"natsu/internal/diag"
)

func newTranslateCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "translate"}
	addTranslateFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "natsu.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigSuppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[translate]
output = "gen"
modules = ["a.nmd", "b.nmd"]
references = ["corlib.nmd"]
jobs = 3
[target]
pointer_size = 4
`)
	root := filepath.Dir(path)
	cmd := newTranslateCommand(t, "--config", path, "--ref", "extra.nmd")
	req, err := buildTranslateRequest(cmd, nil)
	if err != nil {
		t.Fatalf("buildTranslateRequest: %v", err)
	}
	if len(req.Inputs) != 2 || req.Inputs[0] != filepath.Join(root, "a.nmd") {
		t.Fatalf("inputs %v", req.Inputs)
	}
	if req.OutputDir != filepath.Join(root, "gen") || req.Jobs != 3 {
		t.Fatalf("out %q jobs %d", req.OutputDir, req.Jobs)
	}
	if req.Target.PtrSize != 4 {
		t.Fatalf("target %+v", req.Target)
	}
	want := []string{filepath.Join(root, "corlib.nmd"), "extra.nmd"}
	if fmt.Sprint(req.References) != fmt.Sprint(want) {
		t.Fatalf("references %v, want %v", req.References, want)
	}
	if req.Translator == "" {
		t.Fatalf("translator id missing")
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, `
[translate]
output = "gen"
modules = ["a.nmd"]
jobs = 3
[target]
pointer_size = 4
`)
	cmd := newTranslateCommand(t, "--config", path, "--out", "elsewhere", "-j", "1", "--pointer-size", "8", "--no-cache")
	req, err := buildTranslateRequest(cmd, []string{"x.nmd"})
	if err != nil {
		t.Fatalf("buildTranslateRequest: %v", err)
	}
	if len(req.Inputs) != 1 || req.Inputs[0] != "x.nmd" {
		t.Fatalf("inputs %v", req.Inputs)
	}
	if req.OutputDir != "elsewhere" || req.Jobs != 1 || req.Target.PtrSize != 8 || !req.NoCache {
		t.Fatalf("request %+v", req)
	}
}

func TestNoModulesIsCoded(t *testing.T) {
	path := writeConfig(t, "[translate]\noutput = \"gen\"\n")
	cmd := newTranslateCommand(t, "--config", path)
	_, err := buildTranslateRequest(cmd, nil)
	if code, ok := diag.CodeOf(err); !ok || code != diag.CfgNoModules {
		t.Fatalf("err = %v", err)
	}
}

func TestBadPointerSize(t *testing.T) {
	path := writeConfig(t, "")
	cmd := newTranslateCommand(t, "--config", path, "--pointer-size", "2")
	if _, err := buildTranslateRequest(cmd, []string{"a.nmd"}); err == nil {
		t.Fatalf("expected error for pointer size 2")
	}
}

func TestDisplayNames(t *testing.T) {
	got := displayNames([]string{"out/a/Demo.nmd", "out/b/Demo.nmd", "lib/Core.nmd"})
	want := []string{"out/a/Demo.nmd", "out/b/Demo.nmd", "Core.nmd"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("displayNames = %v, want %v", got, want)
	}
}

func TestReadSwitch(t *testing.T) {
	for in, want := range map[string]switchMode{"": modeAuto, " ON ": modeOn, "off": modeOff} {
		got, err := readSwitch("ui", in)
		if err != nil || got != want {
			t.Fatalf("readSwitch(%q) = %q, %v", in, got, err)
		}
	}
	_, err := readSwitch("color", "sometimes")
	if err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("err = %v", err)
	}
	if !modeOn.enabled(nil) || modeOff.enabled(nil) {
		t.Fatalf("explicit modes must ignore the stream")
	}
}

func TestReportErrorShowsCodeAndLocation(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	err := diag.Errorf(diag.TrStackUnderflow, diag.At("Demo", "Demo.Calc", "Add", 4), "pop from empty stack").
		WithNote(diag.Location{}, "max stack is 2")
	var buf bytes.Buffer
	reportError(&buf, fmt.Errorf("Demo: %w", err))
	out := buf.String()
	for _, want := range []string{"error[TR", "Demo!Demo.Calc::Add+IL_0004", "pop from empty stack", "note: max stack is 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	reportError(&buf, fmt.Errorf("plain failure"))
	if buf.String() != "error: plain failure\n" {
		t.Fatalf("plain error = %q", buf.String())
	}
}

func TestWithoutPath(t *testing.T) {
	got := withoutPath([]string{"a.nmd", "./b.nmd", "c.nmd"}, "b.nmd")
	if fmt.Sprint(got) != "[a.nmd c.nmd]" {
		t.Fatalf("withoutPath = %v", got)
	}
}
