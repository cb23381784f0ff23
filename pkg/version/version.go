// Package version parses artifact versions and implements the policies
// used to pick between competing versions of one artifact.
//
// Release versions are dotted numeric versions parsed with
// github.com/Masterminds/semver/v3. Integration builds append
// "-IB<build id>" to a release base; build ids are compared numerically.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/depot/pkg/artifact"
)

// Version is a parsed release or integration version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3.
type Version struct {
	raw   string
	base  *mm.Version
	build uint64 // integration build id, 0 for releases
	ib    bool
}

// Parse parses a release version ("1.2") or an integration build
// ("1.2-IB20240101120000000").
func Parse(raw string) (Version, error) {
	base, build, isIB := strings.Cut(raw, artifact.IntegrationMarker)
	v, err := mm.NewVersion(base)
	if err != nil {
		return Version{}, fmt.Errorf("version: parse %q: %w", raw, err)
	}
	out := Version{raw: raw, base: v}
	if isIB {
		n, err := strconv.ParseUint(build, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("version: parse build id of %q: %w", raw, err)
		}
		out.build, out.ib = n, true
	}
	return out, nil
}

// String returns the version as it was parsed.
func (v Version) String() string { return v.raw }

// Major returns the major component of the base version.
func (v Version) Major() uint64 { return v.base.Major() }

// Minor returns the minor component of the base version.
func (v Version) Minor() uint64 { return v.base.Minor() }

// Patch returns the patch component of the base version.
func (v Version) Patch() uint64 { return v.base.Patch() }

// IsIntegration reports whether v is an integration build.
func (v Version) IsIntegration() bool { return v.ib }

// Build returns the integration build id.
func (v Version) Build() uint64 { return v.build }

// Compare compares a and b, returning:
// -1 if a < b
//
//	0 if a == b
//	1 if a > b
//
// Integration builds of a base sort before the release of that base and
// are ordered by build id among themselves.
func Compare(a, b Version) int {
	if c := a.base.Compare(b.base); c != 0 {
		return c
	}
	switch {
	case a.ib && !b.ib:
		return -1
	case !a.ib && b.ib:
		return 1
	case a.build < b.build:
		return -1
	case a.build > b.build:
		return 1
	}
	return 0
}

// dottedNumeric matches plain release versions such as "1", "1.2" or "1.2.3".
var dottedNumeric = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Latest returns the highest release among candidate names. Candidates may
// be bare versions ("1.2") or file names in the "<name>-<version>.<type>"
// layout. Names that are not dotted numeric versions are ignored, including
// pre-releases ("2.0-RC1"), build metadata and a "v" prefix.
func Latest(name, typ string, candidates []string) (string, bool) {
	var (
		best  Version
		found bool
	)
	for _, c := range candidates {
		c = strings.TrimPrefix(c, name+"-")
		if typ != "" {
			c = strings.TrimSuffix(c, "."+typ)
		}
		if !dottedNumeric.MatchString(c) {
			continue
		}
		v, err := Parse(c)
		if err != nil {
			continue
		}
		if !found || Compare(v, best) > 0 {
			best, found = v, true
		}
	}
	if !found {
		return "", false
	}
	return best.String(), true
}

// BestIntegration returns the newest integration build of base among
// candidate names, formatted as "<base>-IB<build id>". Candidates are item
// names such as "<name>-<base>-IB<id>.<type>" or bare "<base>-IB<id>".
// Candidates whose build id is not numeric are logged and skipped.
func BestIntegration(name, base string, candidates []string, logger *log.Logger) (string, bool) {
	prefixes := []string{name + "-" + base + artifact.IntegrationMarker, base + artifact.IntegrationMarker}
	var (
		best  uint64
		found bool
	)
	for _, c := range candidates {
		var rest string
		ok := false
		for _, p := range prefixes {
			if rest, ok = strings.CutPrefix(c, p); ok {
				break
			}
		}
		if !ok {
			continue
		}
		if i := strings.IndexByte(rest, '.'); i >= 0 {
			rest = rest[:i]
		}
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			if logger != nil {
				logger.Debug("skipping integration build with invalid id", "candidate", c, "err", err)
			}
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	if !found {
		return "", false
	}
	return base + artifact.IntegrationMarker + strconv.FormatUint(best, 10), true
}

// Max returns the higher of two version strings. Unparseable versions lose
// against parseable ones; empty strings mean unknown.
func Max(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return a
	case errA != nil:
		return b
	case errB != nil:
		return a
	}
	if Compare(vb, va) > 0 {
		return b
	}
	return a
}
