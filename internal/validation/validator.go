package validation

import (
	"regexp"
	"strings"

	"github.com/photo-gallery-api/internal/models"
)

// MaxAttachmentSize is the exclusive upper bound on an accepted image (10MB)
const MaxAttachmentSize = 10 * 1024 * 1024

// SupportedImageTypes lists the accepted declared content types
var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	bracketedAddress = regexp.MustCompile(`<([^>]+)>`)
	bareAddress      = regexp.MustCompile(`([^\s]+@[^\s]+)`)
)

// Validator decides which inbound emails and attachments may become photos
type Validator struct {
	allowedSenders []string
}

// NewValidator creates a validator for the given uploader allow-list
func NewValidator(allowedSenders []string) *Validator {
	allowed := make([]string, 0, len(allowedSenders))
	for _, s := range allowedSenders {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			allowed = append(allowed, s)
		}
	}
	return &Validator{allowedSenders: allowed}
}

// IsAuthorizedSender reports whether address contains any allowed uploader address.
// Matching is a case-insensitive substring test, so "Name <allowed@x>" also passes.
func (v *Validator) IsAuthorizedSender(address string) bool {
	addr := strings.ToLower(address)
	for _, allowed := range v.allowedSenders {
		if strings.Contains(addr, allowed) {
			return true
		}
	}
	return false
}

// IsAcceptableImage checks the declared content type and size of an attachment.
// The bytes are not sniffed.
func IsAcceptableImage(attachment models.EmailAttachment) bool {
	return SupportedImageTypes[strings.ToLower(attachment.ContentType)] &&
		attachment.Size > 0 &&
		attachment.Size < MaxAttachmentSize
}

// FilterImages keeps the acceptable attachments in their original order
func FilterImages(attachments []models.EmailAttachment) []models.EmailAttachment {
	var images []models.EmailAttachment
	for _, a := range attachments {
		if IsAcceptableImage(a) {
			images = append(images, a)
		}
	}
	return images
}

// ExtractEmailAddress pulls the address out of forms like "Name <addr>".
// Falls back to the first token containing "@", then to the raw input.
func ExtractEmailAddress(raw string) string {
	if m := bracketedAddress.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := bareAddress.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// RecipientMatches reports whether any recipient contains target, ignoring case
func RecipientMatches(recipients []string, target string) bool {
	target = strings.ToLower(target)
	for _, r := range recipients {
		if strings.Contains(strings.ToLower(r), target) {
			return true
		}
	}
	return false
}
