package main

import "testing"

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line    string
		command string
		args    int
		wantErr bool
	}{
		{"python3 recognize.py cells", "python3", 2, false},
		{"  ./ocr  ", "./ocr", 0, false},
		{"", "", 0, true},
		{" \t ", "", 0, true},
	}
	for _, tt := range tests {
		command, args, err := splitCommand(tt.line)
		if tt.wantErr {
			if err == nil {
				t.Errorf("splitCommand(%q): expected error", tt.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitCommand(%q): %v", tt.line, err)
			continue
		}
		if command != tt.command || len(args) != tt.args {
			t.Errorf("splitCommand(%q) = %q %v, want %q with %d args", tt.line, command, args, tt.command, tt.args)
		}
	}
}
