package version

import "runtime"

// Build metadata, overridden at link time:
//
//	-ldflags "-X .../internal/version.Version=v0.3.0 -X .../internal/version.Commit=abcd123"
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)
