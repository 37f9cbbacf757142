// Package version holds the build-time version stamp, overridden via
// -ldflags "-X github.com/resolvectx/resloc/internal/version.Version=...".
package version

// Version is the resloc build version; "dev" when built without stamping.
var Version = "dev"
