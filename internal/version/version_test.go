package version

import (
	"strings"
	"testing"
)

func TestStringContainsIdentifiers(t *testing.T) {
	s := String()
	if !strings.Contains(s, Version) || !strings.Contains(s, GitSHA) || !strings.Contains(s, BuildTime) {
		t.Errorf("String() = %q, want the version, commit, and build time", s)
	}
}
