// Package version holds the relay protocol and build versions.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol is the relay protocol version advertised over DNS-SD.
const Protocol = "1.0"

// Build is the program version, set at link time with
// -ldflags "-X github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/version.Build=v1.2.3".
var Build = "dev"

// ProtocolVersion is a parsed "major.minor" protocol version.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (ProtocolVersion, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok || strings.Contains(minor, ".") {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	ma, err := strconv.ParseUint(major, 10, 16)
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}
	mi, err := strconv.ParseUint(minor, 10, 16)
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return ProtocolVersion{Major: uint16(ma), Minor: uint16(mi)}, nil
}

// String returns the version as "major.minor".
func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// Supports reports whether a peer advertising s can talk to this build.
// An empty or unparseable version is treated as compatible.
func Supports(s string) bool {
	if s == "" {
		return true
	}
	peer, err := Parse(s)
	if err != nil {
		return true
	}
	current, _ := Parse(Protocol)
	return current.Compatible(peer)
}
