package cosmic

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
)

type mediaResponse struct {
	Media struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		ImgixURL string `json:"imgix_url"`
	} `json:"media"`
}

// MediaStore uploads into the bucket's media library
type MediaStore struct {
	client *Client
}

var _ repository.MediaStore = (*MediaStore)(nil)

// NewMediaStore creates a media store on the client's bucket
func NewMediaStore(client *Client) *MediaStore {
	return &MediaStore{client: client}
}

// Upload sends the bytes as a multipart form with the target folder
func (s *MediaStore) Upload(ctx context.Context, upload models.MediaUpload) (*models.ImageRef, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename=%q`, upload.Filename))
	if upload.ContentType != "" {
		header.Set("Content-Type", upload.ContentType)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, err
	}
	if upload.Folder != "" {
		if err := w.WriteField("folder", upload.Folder); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/buckets/%s/media", s.client.uploadURL, url.PathEscape(s.client.bucket))

	var resp mediaResponse
	if err := s.client.do(ctx, http.MethodPost, endpoint, &buf, w.FormDataContentType(), true, &resp); err != nil {
		return nil, err
	}
	if resp.Media.URL == "" {
		return nil, fmt.Errorf("cosmic: media response has no url")
	}

	return &models.ImageRef{URL: resp.Media.URL, ImgixURL: resp.Media.ImgixURL}, nil
}
