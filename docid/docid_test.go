package docid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishedID(t *testing.T) {
	assert.Equal(t, "abc", PublishedID("abc"))
	assert.Equal(t, "abc", PublishedID("drafts.abc"))
	assert.Equal(t, "abc", PublishedID("versions.summer.abc"))
	assert.Equal(t, "versions.abc", PublishedID("versions.abc"))
	assert.Equal(t, "", PublishedID(""))
}

func TestDraftID(t *testing.T) {
	assert.Equal(t, "drafts.abc", DraftID("abc"))
	assert.Equal(t, "drafts.abc", DraftID("drafts.abc"))
	assert.Equal(t, "drafts.abc", DraftID("versions.r1.abc"))
}

func TestKinds(t *testing.T) {
	assert.True(t, IsPublished("abc"))
	assert.False(t, IsPublished(""))
	assert.True(t, IsDraft("drafts.abc"))
	assert.False(t, IsDraft("abc"))
	assert.True(t, IsVersion("versions.r1.abc"))
	assert.False(t, IsVersion("versions.abc"))
	assert.False(t, IsPublished("versions.r1.abc"))
}

func TestVersionOf(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"abc", true},
		{"drafts.abc", true},
		{"versions.r1.abc", true},
		{"abcd", false},
		{"drafts.abcd", false},
		{"versions.r1.other", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VersionOf(tt.id, "abc"), tt.id)
	}
	assert.False(t, VersionOf("abc", ""))
}
