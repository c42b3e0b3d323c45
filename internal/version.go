// Package internal holds shared metadata for the noveltrans application.
package internal

// Version is the application version, overridable at build time with
// -ldflags "-X noveltrans/internal.Version=...".
var Version = "0.1.0"
