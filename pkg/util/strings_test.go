package util

import "testing"

func TestStripSpaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Core Router", "CoreRouter"},
		{"Cisco IOSv L2", "CiscoIOSvL2"},
		{"VPCS", "VPCS"},
		{"", ""},
	}

	for _, tt := range tests {
		got := StripSpaces(tt.input)
		if got != tt.want {
			t.Errorf("StripSpaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
