package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String("sudoku-ar")
	if !strings.HasPrefix(got, "sudoku-ar "+Version) {
		t.Errorf("String = %q", got)
	}
	if !strings.Contains(got, GitCommit) || !strings.Contains(got, BuildTime) {
		t.Errorf("String = %q, missing build info", got)
	}
}
