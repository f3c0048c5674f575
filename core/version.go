package core

// Version is the application version, set at build time via ldflags:
//
//	go build -ldflags "-X vram_backend/core.Version=$(git describe --tags --always)" .
//
// Defaults to "dev" when not injected.
var Version = "dev"

// BuildTime is the build timestamp, set at build time via ldflags:
//
//	go build -ldflags "-X vram_backend/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
var BuildTime = "unknown"

// GitCommit is the git commit hash, set at build time via ldflags:
//
//	go build -ldflags "-X vram_backend/core.GitCommit=$(git rev-parse --short HEAD)" .
var GitCommit = "unknown"

// GetVersionInfo returns a formatted version information string, e.g.
// "v1.0.0 (built 2026-01-15T10:30:00Z, commit abc1234)".
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}
