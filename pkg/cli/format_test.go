package cli

import (
	"strings"
	"testing"
)

func TestDotPad(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"appliances", 16, "appliances ....."},
		{"boot", 8, "boot ..."},
		{"links", 6, "links"},
		{"inventory", 5, "inventory"},
		{"", 3, " .."},
		{"", 1, ""},
	}

	for _, tt := range tests {
		got := DotPad(tt.input, tt.width)
		if got != tt.want {
			t.Errorf("DotPad(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
		if tt.width > len(tt.input)+1 && len(got) != tt.width {
			t.Errorf("DotPad(%q, %d) len = %d, want %d", tt.input, tt.width, len(got), tt.width)
		}
	}
}

func TestColorFunctions(t *testing.T) {
	prev := ColorEnabled()
	SetColorEnabled(true)
	defer SetColorEnabled(prev)

	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
		{"Dim", Dim, "\033[2m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("hello")
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("%s should start with %q", tt.name, tt.prefix)
			}
			if !strings.Contains(got, "hello") {
				t.Errorf("%s should contain the input string", tt.name)
			}
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s should end with reset code", tt.name)
			}
		})

		t.Run(tt.name+"_empty", func(t *testing.T) {
			got := tt.fn("")
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s(\"\") should end with reset code", tt.name)
			}
		})
	}
}

func TestColorFunctions_Disabled(t *testing.T) {
	prev := ColorEnabled()
	SetColorEnabled(false)
	defer SetColorEnabled(prev)

	if got := Red("FAIL"); got != "FAIL" {
		t.Errorf("Red() with color disabled = %q, want plain", got)
	}
}

func TestTerminalWidth_Positive(t *testing.T) {
	if w := TerminalWidth(); w <= 0 {
		t.Errorf("TerminalWidth() = %d, want > 0", w)
	}
}
