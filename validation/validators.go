package validation

import (
	"context"
	"regexp"
	"strings"

	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/slug"
)

const (
	MsgLowerCase         = "Use lower case in slug"
	MsgEmptySpaces       = "Spaces are not allowed in the slug field"
	MsgIncorrectStruct   = "Incorrect slug structure"
	MsgNotUnique         = "Slug is not unique"
	MsgInvalidSlugFormat = `Invalid slug format.
    Please ensure the slug contains only lowercase letters, numbers, forward slashes, hyphens and underscores,
    starts with a leading slash and ends with a trailing slash.
    Avoid using dots in URLs to prevent issues with routing.`
)

var (
	invalidCharacters  = regexp.MustCompile(`[^a-z0-9\-/_]`)
	incorrectStructure = regexp.MustCompile(`/{2,}|\.{2,}/|/\./`)
)

func isEmpty(value *vo.Slug) bool {
	return value == nil || value.Current == ""
}

func ValidateIsLowerCase(_ context.Context, value *vo.Slug, _ Context) (vo.Verdict, error) {
	if isEmpty(value) {
		return vo.Valid(), nil
	}
	if value.Current != slug.Lower(value.Current) {
		return vo.Invalid(MsgLowerCase), nil
	}
	return vo.Valid(), nil
}

// ValidateHasEmptySpaces rejects any whitespace matched by slug.IsSpace.
// Hosts register it with warning severity.
func ValidateHasEmptySpaces(_ context.Context, value *vo.Slug, _ Context) (vo.Verdict, error) {
	if isEmpty(value) {
		return vo.Valid(), nil
	}
	if strings.IndexFunc(value.Current, slug.IsSpace) >= 0 {
		return vo.Invalid(MsgEmptySpaces), nil
	}
	return vo.Valid(), nil
}

func ValidateHasSpecialSymbols(_ context.Context, value *vo.Slug, _ Context) (vo.Verdict, error) {
	if isEmpty(value) {
		return vo.Valid(), nil
	}
	current := value.Current
	if invalidCharacters.MatchString(current) ||
		!strings.HasPrefix(current, "/") ||
		!strings.HasSuffix(current, "/") {
		return vo.Invalid(MsgInvalidSlugFormat), nil
	}
	return vo.Valid(), nil
}

// ValidateHasIncorrectStructure rejects doubled slashes, ".." before a slash
// and "/./" segments.
func ValidateHasIncorrectStructure(_ context.Context, value *vo.Slug, _ Context) (vo.Verdict, error) {
	if isEmpty(value) {
		return vo.Valid(), nil
	}
	if incorrectStructure.MatchString(value.Current) {
		return vo.Invalid(MsgIncorrectStruct), nil
	}
	return vo.Valid(), nil
}
