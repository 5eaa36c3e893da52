package util

import "regexp"

// hostSuffix matches a "/<mask>" or " <netmask>" tail on an address string.
var hostSuffix = regexp.MustCompile(`/.*$| .*$`)

// HostAddress strips any CIDR suffix or trailing text from an interface
// address, leaving the bare host address:
//
//	"10.0.0.5/24"             -> "10.0.0.5"
//	"10.0.0.5 255.255.255.0"  -> "10.0.0.5"
func HostAddress(addr string) string {
	return hostSuffix.ReplaceAllString(addr, "")
}
