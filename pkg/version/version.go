// Package version carries build metadata for the gns3lab binary.
package version

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/newtron-network/gns3lab/pkg/version.Version=v0.3.0 \
//	  -X github.com/newtron-network/gns3lab/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/gns3lab/pkg/version.BuildDate=2026-01-01T00:00:00Z" ./cmd/gns3lab
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// IsDev reports whether the binary was built without version ldflags.
func IsDev() bool { return Version == "dev" }

// Info returns a formatted version string for display.
func Info() string {
	if IsDev() {
		return "dev build (use 'make build' for version info)"
	}
	return Version + " (" + GitCommit + ") built " + BuildDate
}
