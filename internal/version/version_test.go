package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit string) {
	t.Helper()
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = v, commit
	t.Cleanup(func() {
		Version, GitCommit = origVersion, origCommit
	})
}

func TestTranslatorIncludesCommit(t *testing.T) {
	withVersion(t, "1.2.3", "abc123")
	if got := Translator(); got != "1.2.3+abc123" {
		t.Fatalf("Translator() = %q", got)
	}
}

func TestTranslatorWithoutCommit(t *testing.T) {
	withVersion(t, " 1.2.3 ", "")
	if got := Translator(); got != "1.2.3" {
		t.Fatalf("Translator() = %q", got)
	}
}

func TestTranslatorEmptyVersion(t *testing.T) {
	withVersion(t, "", "")
	if got := Translator(); got != "dev" {
		t.Fatalf("Translator() = %q", got)
	}
}

func TestPrettyKeepsSuffix(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	withVersion(t, "0.3.0-dev", "")
	if got := Pretty(); got != "0.3.0-dev" {
		t.Fatalf("Pretty() = %q", got)
	}
	withVersion(t, "nightly", "")
	if got := Pretty(); got != "nightly" {
		t.Fatalf("Pretty() = %q", got)
	}
}

func TestPrettyColorsComponents(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	withVersion(t, "1.2.3", "")
	got := Pretty()
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "2") {
		t.Fatalf("Pretty() = %q", got)
	}
}
