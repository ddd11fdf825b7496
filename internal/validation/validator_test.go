package validation

import (
	"testing"

	"github.com/photo-gallery-api/internal/models"
	"github.com/stretchr/testify/assert"
)

var allowList = []string{"jeffhovingaphotos@gmail.com", "jeffhovingaphotos@gail.com"}

func TestIsAuthorizedSender(t *testing.T) {
	v := NewValidator(allowList)

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"exact primary", "jeffhovingaphotos@gmail.com", true},
		{"legacy address", "jeffhovingaphotos@gail.com", true},
		{"mixed case", "JeffHovingaPhotos@Gmail.com", true},
		{"display name form", "Jeff <jeffhovingaphotos@gmail.com>", true},
		{"extracted display name form", ExtractEmailAddress("Jeff <jeffhovingaphotos@gmail.com>"), true},
		{"stranger", "eve@evil.com", false},
		{"empty", "", false},
		// substring semantics are permissive
		{"superstring", "notjeffhovingaphotos@gmail.com.evil.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsAuthorizedSender(tt.address))
		})
	}
}

func TestNewValidator_IgnoresBlankEntries(t *testing.T) {
	v := NewValidator([]string{"", "  "})
	assert.False(t, v.IsAuthorizedSender("anyone@example.com"))
}

func TestIsAcceptableImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		want        bool
	}{
		{"jpeg", "image/jpeg", 1024, true},
		{"uppercase jpeg", "image/JPEG", 1024, true},
		{"jpg alias", "image/jpg", 1, true},
		{"png", "image/png", 2048, true},
		{"gif", "image/gif", 2048, true},
		{"webp", "image/webp", 2048, true},
		{"pdf rejected", "application/pdf", 1024, false},
		{"svg rejected", "image/svg+xml", 1024, false},
		{"empty file", "image/jpeg", 0, false},
		{"negative size", "image/jpeg", -1, false},
		{"just under limit", "image/png", MaxAttachmentSize - 1, true},
		{"exactly limit", "image/png", MaxAttachmentSize, false},
		{"over limit", "image/png", MaxAttachmentSize + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := models.EmailAttachment{Filename: "f", ContentType: tt.contentType, Size: tt.size}
			assert.Equal(t, tt.want, IsAcceptableImage(a))
		})
	}
}

func TestFilterImages(t *testing.T) {
	in := []models.EmailAttachment{
		{Filename: "a.jpg", ContentType: "image/jpeg", Size: 10},
		{Filename: "b.pdf", ContentType: "application/pdf", Size: 10},
		{Filename: "c.png", ContentType: "image/png", Size: 10},
	}

	got := FilterImages(in)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "a.jpg", got[0].Filename)
		assert.Equal(t, "c.png", got[1].Filename)
	}
	assert.Empty(t, FilterImages(nil))
}

func TestExtractEmailAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jeff <jeffhovingaphotos@gmail.com>", "jeffhovingaphotos@gmail.com"},
		{"jeffhovingaphotos@gmail.com", "jeffhovingaphotos@gmail.com"},
		{"sent by jeff@example.com today", "jeff@example.com"},
		{"\"Hovinga, Jeff\" <jeff@example.com>", "jeff@example.com"},
		{"no address here", "no address here"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEmailAddress(tt.in))
		})
	}
}

func TestRecipientMatches(t *testing.T) {
	target := "jeffhovingaphotos@gmail.com"

	assert.True(t, RecipientMatches([]string{"other@x.com", "Jeff <JeffHovingaPhotos@gmail.com>"}, target))
	assert.False(t, RecipientMatches([]string{"other@x.com"}, target))
	assert.False(t, RecipientMatches(nil, target))
}
