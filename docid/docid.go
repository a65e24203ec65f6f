// Package docid handles document identifiers and their draft and release
// version variants.
//
//	abc                  published
//	drafts.abc           draft of abc
//	versions.summer.abc  version of abc in the release "summer"
package docid

import "strings"

const (
	DraftsPrefix  = "drafts."
	VersionPrefix = "versions."
)

func IsDraft(id string) bool {
	return strings.HasPrefix(id, DraftsPrefix)
}

// IsVersion reports whether id belongs to a release, i.e. has the form
// versions.<release>.<published id>.
func IsVersion(id string) bool {
	rest, ok := strings.CutPrefix(id, VersionPrefix)
	return ok && strings.Contains(rest, ".")
}

func IsPublished(id string) bool {
	return id != "" && !IsDraft(id) && !IsVersion(id)
}

// PublishedID returns the identifier of the published counterpart of id.
func PublishedID(id string) string {
	if rest, ok := strings.CutPrefix(id, DraftsPrefix); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(id, VersionPrefix); ok {
		if _, published, found := strings.Cut(rest, "."); found {
			return published
		}
	}
	return id
}

func DraftID(id string) string {
	return DraftsPrefix + PublishedID(id)
}

// VersionOf reports whether id is the published document publishedID, its
// draft or one of its release versions.
func VersionOf(id, publishedID string) bool {
	if id == "" || publishedID == "" {
		return false
	}
	if id == publishedID || id == DraftsPrefix+publishedID {
		return true
	}
	return IsVersion(id) && PublishedID(id) == publishedID
}
