package common

import (
	"path"
	"regexp"
	"strings"
)

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// PkgAlias returns the package alias for a given package path.
// The alias is lexical: the last path element, skipping a trailing /vN major
// version element and a gopkg.in style .vN suffix. Characters that cannot
// appear in an identifier are replaced with underscores.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if majorVersion.MatchString(base) && strings.Contains(pkgPath, "/") {
		base = path.Base(path.Dir(pkgPath))
	}

	if i := strings.LastIndex(base, ".v"); i > 0 && majorVersion.MatchString(base[i+1:]) {
		base = base[:i]
	}

	base = strings.TrimPrefix(base, "go-")

	return strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, base)
}
