// Package buildinfo carries build-time metadata injected via ldflags:
//
//	go build -ldflags "\
//	  -X github.com/bazumi/promobot/core/buildinfo.Version=v1.2.3 \
//	  -X github.com/bazumi/promobot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/bazumi/promobot/core/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// Commit is the short VCS revision the binary was built from.
	Commit = "none"
	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String returns a single-line human readable build description.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
