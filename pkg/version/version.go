// Package version holds the release version shared by the CLI and servers.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/unowned-ai/memoirs/pkg/version.Version=...".
var Version = "0.1.0"
