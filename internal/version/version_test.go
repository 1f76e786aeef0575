package version

import (
	"strings"
	"testing"
)

func stamp(t *testing.T, commit, date string) {
	t.Helper()
	oldCommit, oldDate := Commit, BuildDate
	Commit, BuildDate = commit, date
	t.Cleanup(func() { Commit, BuildDate = oldCommit, oldDate })
}

func TestUserAgent(t *testing.T) {
	stamp(t, "0123456789abcdef", "2026-01-02")
	if got, want := UserAgent(), "mcremap/"+Version+" (0123456)"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}

	stamp(t, "abc", "")
	if got, want := UserAgent(), "mcremap/"+Version+" (abc)"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}

func TestFull(t *testing.T) {
	stamp(t, "0123456789abcdef", "2026-01-02")
	full := Full()
	for _, want := range []string{"mcremap " + Version, "Commit: 0123456789abcdef", "Built:  2026-01-02"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q:\n%s", want, full)
		}
	}
}

func TestRevision_Fallback(t *testing.T) {
	stamp(t, "", "")
	// test binaries carry no VCS stamp
	if Revision() == "" || Built() == "" {
		t.Error("Revision and Built must never be empty")
	}
}
