// ABOUTME: Version constants for the transport demos
// ABOUTME: Single place to bump release information
package version

const (
	Version      = "0.1.0"
	Product      = "Cadenza Transport"
	Manufacturer = "Cadenza Audio"
)
