package models

import (
	"net/url"
	"strconv"
)

// Photo represents a gallery photo
type Photo struct {
	ID          string   `json:"id" db:"id"`
	Title       string   `json:"title" db:"title"`
	Slug        string   `json:"slug" db:"slug"`
	Caption     string   `json:"caption" db:"caption"`
	Image       ImageRef `json:"photo"`
	UploadDate  Date     `json:"upload_date" db:"upload_date"`
	Featured    bool     `json:"featured" db:"featured"`
	EmailSource string   `json:"email_source,omitempty" db:"email_source"`
}

// ImageRef points at an uploaded asset and its CDN-transformable twin
type ImageRef struct {
	URL      string `json:"url" db:"image_url"`
	ImgixURL string `json:"imgix_url" db:"imgix_url"`
}

// Transform returns the CDN URL resized and cropped to width x height
func (r ImageRef) Transform(width, height int) string {
	base := r.ImgixURL
	if base == "" {
		base = r.URL
	}
	if base == "" {
		return ""
	}

	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	q.Set("fit", "crop")
	q.Set("auto", "format,compress")
	u.RawQuery = q.Encode()
	return u.String()
}

// PhotoQuery narrows a photo listing; results are newest upload first
type PhotoQuery struct {
	FeaturedOnly bool
	Limit        int
}

// DefaultPhotoLimit caps photo listings
const DefaultPhotoLimit = 50
