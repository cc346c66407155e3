// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// Environment variables consulted for Sentinel Hub credentials
const (
	EnvClientID     = "SH_CLIENT_ID"
	EnvClientSecret = "SH_CLIENT_SECRET"
)
