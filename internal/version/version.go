// Package version provides build and version information for the advent engine.
package version

// Version is the current release version.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/AaronLay10/AdventEngine/internal/version.Version=x.y.z"
var Version = "0.1.0"
