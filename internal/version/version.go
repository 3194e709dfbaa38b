// internal/version/version.go
package version

// Version is stamped at release time; dev builds report the placeholder.
var Version = "0.3.0"
