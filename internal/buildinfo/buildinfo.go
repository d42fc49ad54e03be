// Package buildinfo carries build-time metadata injected through -ldflags.
package buildinfo

import "fmt"

// UnknownValue is reported for metadata that was not set at build time.
const UnknownValue = "unknown"

// Info is the version and build date of the binary.
type Info struct {
	Version   string
	BuildDate string
}

// New returns build metadata with empty fields left as UnknownValue.
func New(version, buildDate string) *Info {
	return &Info{Version: version, BuildDate: buildDate}
}

// GetVersion returns the version tag, or UnknownValue.
func (i *Info) GetVersion() string {
	if i == nil || i.Version == "" {
		return UnknownValue
	}
	return i.Version
}

// GetBuildDate returns the build date, or UnknownValue.
func (i *Info) GetBuildDate() string {
	if i == nil || i.BuildDate == "" {
		return UnknownValue
	}
	return i.BuildDate
}

// Release names the build for error telemetry.
func (i *Info) Release() string {
	return "mediaseed@" + i.GetVersion()
}

func (i *Info) String() string {
	return fmt.Sprintf("mediaseed %s (built %s)", i.GetVersion(), i.GetBuildDate())
}
