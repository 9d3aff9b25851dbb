package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origV, origC, origD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origV, origC, origD })

	Version, Commit, Date = "v0.3.1", "0123456789abcdef", "2026-10-01"
	if got, want := String(), "v0.3.1 (0123456, 2026-10-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	Commit = "abc"
	if got := String(); !strings.Contains(got, "(abc,") {
		t.Errorf("short commits must be kept whole, got %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "tdsqa/"+Version) {
		t.Errorf("unexpected user agent %q", ua)
	}
}
