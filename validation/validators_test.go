package validation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/validation"
)

type validatorCase struct {
	name    string
	value   *vo.Slug
	message string // empty means valid
}

func runValidatorCases(t *testing.T, fn validation.CustomValidator, cases []validatorCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := fn(context.Background(), tc.value, validation.Context{})
			require.NoError(t, err)
			if tc.message == "" {
				assert.True(t, verdict.Valid, verdict.Message)
				return
			}
			assert.False(t, verdict.Valid)
			assert.Equal(t, tc.message, verdict.Message)
		})
	}
}

func TestValidateIsLowerCase(t *testing.T) {
	runValidatorCases(t, validation.ValidateIsLowerCase, []validatorCase{
		{"nil slug", nil, ""},
		{"empty current", vo.NewSlug(""), ""},
		{"lower case", vo.NewSlug("/foo/"), ""},
		{"upper case", vo.NewSlug("/Foo/"), validation.MsgLowerCase},
		{"unicode upper case", vo.NewSlug("/Über/"), validation.MsgLowerCase},
		{"digits and symbols", vo.NewSlug("/2024/a-b_c/"), ""},
	})
}

func TestValidateHasEmptySpaces(t *testing.T) {
	runValidatorCases(t, validation.ValidateHasEmptySpaces, []validatorCase{
		{"nil slug", nil, ""},
		{"no spaces", vo.NewSlug("/foo/bar/"), ""},
		{"space", vo.NewSlug("/foo bar/"), validation.MsgEmptySpaces},
		{"tab", vo.NewSlug("/foo\tbar/"), validation.MsgEmptySpaces},
		{"no-break space", vo.NewSlug("/foo\u00a0bar/"), validation.MsgEmptySpaces},
		{"trailing newline", vo.NewSlug("/foo/\n"), validation.MsgEmptySpaces},
		{"byte order mark", vo.NewSlug("/a\ufeffb/"), validation.MsgEmptySpaces},
		{"next line", vo.NewSlug("/a\u0085b/"), ""},
	})
}

func TestValidateHasSpecialSymbols(t *testing.T) {
	runValidatorCases(t, validation.ValidateHasSpecialSymbols, []validatorCase{
		{"nil slug", nil, ""},
		{"empty current", vo.NewSlug(""), ""},
		{"valid", vo.NewSlug("/foo/"), ""},
		{"valid nested", vo.NewSlug("/foo/bar-baz_1/"), ""},
		{"root", vo.NewSlug("/"), ""},
		{"missing leading slash", vo.NewSlug("foo/"), validation.MsgInvalidSlugFormat},
		{"missing trailing slash", vo.NewSlug("/foo"), validation.MsgInvalidSlugFormat},
		{"upper case", vo.NewSlug("/Foo/"), validation.MsgInvalidSlugFormat},
		{"dot", vo.NewSlug("/foo.html/"), validation.MsgInvalidSlugFormat},
		{"space", vo.NewSlug("/foo bar/"), validation.MsgInvalidSlugFormat},
		{"umlaut", vo.NewSlug("/über/"), validation.MsgInvalidSlugFormat},
	})
}

func TestValidateHasIncorrectStructure(t *testing.T) {
	runValidatorCases(t, validation.ValidateHasIncorrectStructure, []validatorCase{
		{"nil slug", nil, ""},
		{"valid", vo.NewSlug("/a/b/"), ""},
		{"double slash", vo.NewSlug("/a//b/"), validation.MsgIncorrectStruct},
		{"leading double slash", vo.NewSlug("//a/"), validation.MsgIncorrectStruct},
		{"parent segment", vo.NewSlug("/a/../b/"), validation.MsgIncorrectStruct},
		{"dots before slash", vo.NewSlug("/a.../"), validation.MsgIncorrectStruct},
		{"current segment", vo.NewSlug("/a/./b/"), validation.MsgIncorrectStruct},
		{"single dot in word", vo.NewSlug("/a.b/"), ""},
	})
}
