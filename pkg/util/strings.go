package util

import "strings"

// StripSpaces removes every space character from s.
// "Cisco IOSv L2" -> "CiscoIOSvL2"
func StripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
