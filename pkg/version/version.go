// Package version holds the build version, injected at link time.
package version

// Version is the paramflow version. Overridden by the release build via
// -ldflags "-X github.com/paramflow/paramflow/pkg/version.Version=...".
var Version = "0.0.1"
