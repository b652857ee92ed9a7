// Package version exposes tempwatch build metadata.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at build time.
package version
