// Package manifest implements parsing of application release manifests and
// the version identifiers they carry.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned when a version string does not match
// MAJOR.MINOR.PATCH or MAJOR.MINOR.PATCH+BUILD.
var ErrInvalidVersion = errors.New("invalid version format")

// Version identifies an application release. It is a semantic version triple
// plus a numeric build counter, the build counter being the final tie-breaker
// when two versions share the same triple. A missing build part normalizes
// to 0.
type Version struct {
	Major uint64 `json:"major"`
	Minor uint64 `json:"minor"`
	Patch uint64 `json:"patch"`
	Build uint64 `json:"build"`

	// Raw is the original string form, e.g. "1.16.1+1".
	Raw string `json:"raw"`
}

// ParseVersion parses a version string of the form MAJOR.MINOR.PATCH or
// MAJOR.MINOR.PATCH+BUILD. Pre-release suffixes and non-numeric build
// metadata are rejected.
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, fmt.Errorf("%w: empty version string", ErrInvalidVersion)
	}

	sv, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q (expected e.g. 1.16.1+3)", ErrInvalidVersion, raw)
	}
	if sv.Prerelease() != "" {
		return Version{}, fmt.Errorf("%w: %q contains a pre-release suffix", ErrInvalidVersion, raw)
	}

	var build uint64
	if meta := sv.Metadata(); meta != "" {
		build, err = strconv.ParseUint(meta, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q has a non-numeric build number", ErrInvalidVersion, raw)
		}
	}

	return Version{
		Major: sv.Major(),
		Minor: sv.Minor(),
		Patch: sv.Patch(),
		Build: build,
		Raw:   trimmed,
	}, nil
}

// Core returns the MAJOR.MINOR.PATCH part without the build number.
func (v Version) Core() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// String returns the canonical MAJOR.MINOR.PATCH+BUILD form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d+%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Compare orders two versions by the tuple (major, minor, patch, build),
// left to right, first difference deciding. It returns -1 when v is older
// than other, 0 when equal, and 1 when newer.
func (v Version) Compare(other Version) int {
	for _, pair := range [...][2]uint64{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
		{v.Build, other.Build},
	} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

// IsNewerThan reports whether v is strictly newer than other.
func (v Version) IsNewerThan(other Version) bool {
	return v.Compare(other) > 0
}
