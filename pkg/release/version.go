package release

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/woozymasta/semver"
)

var (
	versionPattern  = regexp.MustCompile(`^(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)(?:-([0-9A-Za-z]+))?$`)
	unhyphenatedPre = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+[A-Za-z]`)
	leadingZero     = regexp.MustCompile(`(^|\.)0[0-9]`)
	letterThenDigit = regexp.MustCompile(`[A-Za-z][0-9]`)
)

// Version is a validated release version: MAJOR.MINOR.PATCH with an
// optional pre-release label such as "beta1". The zero value is not a
// valid version.
type Version struct {
	raw string
	pre string
	sv  semver.Semver
}

// ParseVersion validates raw against the release grammar
//
//	version    = digits "." digits "." digits ["-" prerelease]
//	digits     = "0" / %x31-39 *DIGIT
//	prerelease = 1*(ALPHA / DIGIT), with at least one ALPHA directly followed by a DIGIT
//
// The input must be the bare version: prefixes such as "v" belong to the
// repository tag prefix, not to the version.
func ParseVersion(raw string) (Version, error) {
	if reason := versionProblem(raw); reason != "" {
		return Version{}, &InvalidVersionError{Raw: raw, Reason: reason}
	}
	m := versionPattern.FindStringSubmatch(raw)
	sv, ok := semver.Parse(raw)
	if !ok || !sv.IsValid() {
		return Version{}, &InvalidVersionError{Raw: raw, Reason: "not a semantic version"}
	}
	return Version{raw: raw, pre: m[4], sv: sv}, nil
}

func versionProblem(raw string) string {
	switch {
	case raw == "":
		return "version is empty"
	case raw[0] < '0' || raw[0] > '9':
		return "must start with a digit (tag prefixes are configured per repository)"
	case strings.Contains(raw, ".."):
		return `contains ".."`
	}
	m := versionPattern.FindStringSubmatch(raw)
	if m == nil {
		switch {
		case unhyphenatedPre.MatchString(raw):
			return "pre-release label must be separated by '-'"
		case leadingZero.MatchString(strings.SplitN(raw, "-", 2)[0]):
			return "numeric components must not have leading zeros"
		default:
			return "must match MAJOR.MINOR.PATCH[-PRERELEASE]"
		}
	}
	if pre := m[4]; pre != "" && !letterThenDigit.MatchString(pre) {
		return fmt.Sprintf("pre-release label %q must contain a letter followed by a digit", pre)
	}
	return ""
}

// MustParseVersion is like ParseVersion but panics on invalid input.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) Major() int { return v.sv.Major }
func (v Version) Minor() int { return v.sv.Minor }
func (v Version) Patch() int { return v.sv.Patch }

// Prerelease returns the label without the leading hyphen, or "".
func (v Version) Prerelease() string { return v.pre }

// IsZero reports whether v was not produced by ParseVersion.
func (v Version) IsZero() bool { return v.raw == "" }

func (v Version) String() string { return v.raw }

// Compare orders versions by semantic version precedence: a pre-release
// sorts before the release with the same MAJOR.MINOR.PATCH.
func (v Version) Compare(o Version) int { return v.sv.Compare(o.sv) }

// VersionFromTag parses tag as prefix followed by a release version.
func VersionFromTag(prefix, tag string) (Version, bool) {
	rest, ok := strings.CutPrefix(tag, prefix)
	if !ok {
		return Version{}, false
	}
	v, err := ParseVersion(rest)
	return v, err == nil
}
