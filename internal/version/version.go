// Package version reports the build version, set with
// -ldflags "-X github.com/mamadbah2/motofleet/internal/version.Version=v1.2.3".
package version

// Version of the binaries.
var Version = "dev"
