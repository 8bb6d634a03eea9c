// Package version reports build information for exportkit binaries.
//
// Version, commit and build time are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/exportkit/version.Version=1.0.0"
//
// Unset values fall back to the VCS settings recorded by the Go
// toolchain. Get also lists the module versions of the container
// libraries linked into the binary, so a running service can say which
// backends it was built against.
package version
