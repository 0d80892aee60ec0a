// Package version provides build information and OCF version parsing.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Build information, set with -ldflags "-X github.com/ocf-bpm/bpm-go/pkg/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Current is the OCF core version implemented by this device.
const Current = "1.1"

// ocfPrefix prefixes OCF version strings such as "ocf.1.1.0".
const ocfPrefix = "ocf."

// CoreVersion represents a parsed "major.minor" OCF version.
type CoreVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (CoreVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return CoreVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return CoreVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return CoreVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return CoreVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v CoreVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v CoreVersion) Compatible(other CoreVersion) bool {
	return v.Major == other.Major
}

// ICV returns the /oic/d "icv" string for the version: "ocf.major.minor.0".
func (v CoreVersion) ICV() string {
	return fmt.Sprintf("%s%d.%d.0", ocfPrefix, v.Major, v.Minor)
}

// ParseICV extracts the core version from an "icv" string such as "ocf.1.1.0".
// The patch component is validated and dropped.
func ParseICV(icv string) (CoreVersion, error) {
	if !strings.HasPrefix(icv, ocfPrefix) {
		return CoreVersion{}, fmt.Errorf("not an OCF version: %q", icv)
	}

	parts := strings.Split(icv[len(ocfPrefix):], ".")
	if len(parts) != 3 {
		return CoreVersion{}, fmt.Errorf("invalid OCF version %q: expected ocf.major.minor.patch", icv)
	}
	if _, err := strconv.ParseUint(parts[2], 10, 16); err != nil {
		return CoreVersion{}, fmt.Errorf("invalid OCF version %q: bad patch component", icv)
	}

	return Parse(parts[0] + "." + parts[1])
}

// DataModelVersion is one entry of the /oic/d "dmv" list, e.g. "ocf.res.1.1.0".
type DataModelVersion struct {
	Model   string
	Version CoreVersion
}

// String returns the entry as "<model>.major.minor.0".
func (d DataModelVersion) String() string {
	return fmt.Sprintf("%s.%d.%d.0", d.Model, d.Version.Major, d.Version.Minor)
}

// ParseDataModelVersions parses a comma-separated "dmv" value.
func ParseDataModelVersions(dmv string) ([]DataModelVersion, error) {
	var out []DataModelVersion
	for _, entry := range strings.Split(dmv, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		// The version is the trailing major.minor.patch.
		parts := strings.Split(entry, ".")
		if len(parts) < 4 {
			return nil, fmt.Errorf("invalid data model version %q", entry)
		}
		n := len(parts)
		name := strings.Join(parts[:n-3], ".")
		v, err := ParseICV(ocfPrefix + strings.Join(parts[n-3:], "."))
		if err != nil {
			return nil, fmt.Errorf("invalid data model version %q: %w", entry, err)
		}
		out = append(out, DataModelVersion{Model: name, Version: v})
	}
	return out, nil
}

// CurrentICV returns the "icv" of the current core version.
func CurrentICV() string {
	v, _ := Parse(Current)
	return v.ICV()
}

// String returns the build version line printed by -version flags.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s, OCF %s)", Version, Commit, BuildTime, Current)
}
