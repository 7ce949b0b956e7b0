package release

import "strings"

// TagName is a fully resolved tag: a repository tag prefix followed by a
// release version.
type TagName string

func (t TagName) String() string { return string(t) }

// ResolveTagName joins prefix and v. It only rejects names containing
// "..", which no repository accepts; full reference legality is left to
// the repository (see TagNameChecker).
func ResolveTagName(prefix string, v Version) (TagName, error) {
	if v.IsZero() {
		return "", &InvalidTagNameError{Name: TagName(prefix), Reason: "version is required"}
	}
	name := TagName(prefix + v.String())
	if strings.Contains(string(name), "..") {
		return "", &InvalidTagNameError{Name: name, Reason: `contains ".."`}
	}
	return name, nil
}
