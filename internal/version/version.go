// Package version exposes the build version stamped at link time.
package version

// value is overridden via -ldflags "-X .../internal/version.value=vX.Y.Z".
var value = "v0.0.0"

// Value returns the build version.
func Value() string {
	return value
}
