// Package version carries the productfeed build version.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/scrollfeed/version.Version=1.0.0"
package version
