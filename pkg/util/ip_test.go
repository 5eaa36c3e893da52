package util

import "testing"

func TestHostAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.0.0.5/24", "10.0.0.5"},
		{"10.0.0.5 255.255.255.0", "10.0.0.5"},
		{"10.0.0.5", "10.0.0.5"},
		{"192.168.1.1/32 extra", "192.168.1.1"},
		{"2001:db8::1/64", "2001:db8::1"},
		{"r1.lab.example", "r1.lab.example"},
		{"", ""},
	}

	for _, tt := range tests {
		got := HostAddress(tt.input)
		if got != tt.want {
			t.Errorf("HostAddress(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
