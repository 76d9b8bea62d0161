package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("Version() is empty")
	}
	if strings.ContainsAny(v, " \n") {
		t.Errorf("Version() = %q; want it trimmed", v)
	}
	if App() != v {
		t.Errorf("App() = %q; want %q", App(), v)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "gribble v"+Version()) {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, Platform()) {
		t.Errorf("String() = %q; want platform %s", s, Platform())
	}
}
