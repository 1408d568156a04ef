package solc

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a solc release identifier, e.g. "0.8.14" or
// "0.8.14+commit.80d49f37". The commit suffix is ignored for ordering.
type Version string

// canonical returns the semver-comparable form ("v0.8.14") or "" if invalid.
func (v Version) canonical() string {
	s := strings.TrimPrefix(string(v), "v")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return ""
	}
	// Release lists always carry major.minor.patch; semver.IsValid alone
	// would also accept "0.8".
	if strings.Count(strings.SplitN(s, "-", 2)[0], ".") < 2 {
		return ""
	}
	withV := "v" + s
	if !semver.IsValid(withV) {
		return ""
	}
	return withV
}

// Valid reports whether v parses as a release version.
func (v Version) Valid() bool {
	return v.canonical() != ""
}

// Compare orders two versions; the commit suffix does not participate.
// Returns -1, 0, or 1.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.canonical(), other.canonical())
}

// ErrInvalidVersion is returned for strings that do not parse as a release.
var ErrInvalidVersion = errors.New("invalid compiler version")

// ParseVersion validates a release string.
func ParseVersion(s string) (Version, error) {
	v := Version(s)
	if !v.Valid() {
		return "", ErrInvalidVersion
	}
	return v, nil
}

// SortDescending orders versions newest-first, in place. Invalid versions
// sink to the end so that well-formed candidates are tried first.
func SortDescending(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		vi, vj := versions[i].canonical(), versions[j].canonical()
		if vi == "" || vj == "" {
			return vj == "" && vi != ""
		}
		return semver.Compare(vi, vj) > 0
	})
}
