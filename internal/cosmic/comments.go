package cosmic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
)

// commentMetadata is the shape written on insert
type commentMetadata struct {
	CommenterName    string      `json:"commenter_name"`
	CommentText      string      `json:"comment_text"`
	Photo            string      `json:"photo"`
	ModerationStatus string      `json:"moderation_status"`
	CommentDate      models.Date `json:"comment_date"`
	CommenterEmail   string      `json:"commenter_email"`
}

// commentMetadataRead tolerates the expanded forms returned on reads:
// photo is an id or a full object, status is a key or a {key, value} pair
type commentMetadataRead struct {
	CommenterName    string          `json:"commenter_name"`
	CommentText      string          `json:"comment_text"`
	Photo            json.RawMessage `json:"photo"`
	ModerationStatus json.RawMessage `json:"moderation_status"`
	CommentDate      models.Date     `json:"comment_date"`
	CommenterEmail   string          `json:"commenter_email"`
}

// selectValue is the CMS representation of a select-dropdown field
type selectValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CommentRepo implements repository.CommentRepository over the comments object type
type CommentRepo struct {
	client *Client
}

var _ repository.CommentRepository = (*CommentRepo)(nil)

// NewCommentRepo creates a comment repository on the client's bucket
func NewCommentRepo(client *Client) *CommentRepo {
	return &CommentRepo{client: client}
}

// Create inserts a comment object and assigns its ID
func (r *CommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	body := map[string]interface{}{
		"type":  typeComments,
		"title": comment.Title,
		"metadata": commentMetadata{
			CommenterName:    comment.CommenterName,
			CommentText:      comment.CommentText,
			Photo:            comment.PhotoID,
			ModerationStatus: string(comment.ModerationStatus),
			CommentDate:      comment.CommentDate,
			CommenterEmail:   comment.CommenterEmail,
		},
	}

	obj, err := r.client.insertObject(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = obj.ID
	return nil
}

// GetByID returns nil, nil when the comment does not exist
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	obj, err := r.client.getObject(ctx, id, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment: %w", err)
	}
	if obj == nil {
		return nil, nil
	}
	return decodeComment(*obj)
}

// List returns comments newest comment date first, photos expanded
func (r *CommentRepo) List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error) {
	query := map[string]interface{}{"type": typeComments}
	if q.PhotoID != "" {
		query["metadata.photo"] = q.PhotoID
	}
	if q.Status != nil {
		query["metadata.moderation_status"] = string(*q.Status)
	}

	objs, err := r.client.findAll(ctx, findParams{
		Query: query,
		Sort:  "-metadata.comment_date",
		Depth: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}

	comments := make([]*models.Comment, 0, len(objs))
	for _, obj := range objs {
		comment, err := decodeComment(obj)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// UpdateStatus overwrites only the moderation_status metadata field
func (r *CommentRepo) UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error) {
	body := map[string]interface{}{
		"metadata": map[string]interface{}{
			"moderation_status": string(status),
		},
	}

	obj, err := r.client.updateObject(ctx, id, body)
	if IsNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update comment status: %w", err)
	}
	return decodeComment(*obj)
}

// Delete removes a comment object
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	err := r.client.deleteObject(ctx, id)
	if IsNotFound(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func decodeComment(obj object) (*models.Comment, error) {
	var meta commentMetadataRead
	if len(obj.Metadata) > 0 {
		if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("cosmic: invalid comment metadata for %s: %w", obj.ID, err)
		}
	}

	status, err := decodeStatus(meta.ModerationStatus)
	if err != nil {
		return nil, fmt.Errorf("cosmic: comment %s: %w", obj.ID, err)
	}

	comment := &models.Comment{
		ID:               obj.ID,
		Title:            obj.Title,
		CommenterName:    meta.CommenterName,
		CommenterEmail:   meta.CommenterEmail,
		CommentText:      meta.CommentText,
		ModerationStatus: status,
		CommentDate:      meta.CommentDate,
	}

	photo := bytes.TrimSpace(meta.Photo)
	switch {
	case len(photo) == 0 || bytes.Equal(photo, []byte("null")):
	case photo[0] == '"':
		if err := json.Unmarshal(photo, &comment.PhotoID); err != nil {
			return nil, err
		}
	default:
		var expanded object
		if err := json.Unmarshal(photo, &expanded); err != nil {
			return nil, fmt.Errorf("cosmic: invalid photo on comment %s: %w", obj.ID, err)
		}
		p, err := decodePhoto(expanded)
		if err != nil {
			return nil, err
		}
		comment.PhotoID = p.ID
		comment.Photo = p
	}

	return comment, nil
}

// decodeStatus maps a stored key or {key, value} pair onto the enum.
// A missing status reads as pending.
func decodeStatus(raw json.RawMessage) (models.ModerationStatus, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.StatusPending, nil
	}

	var key string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &key); err != nil {
			return "", err
		}
	} else {
		var sv selectValue
		if err := json.Unmarshal(raw, &sv); err != nil {
			return "", err
		}
		key = sv.Key
	}
	return models.ParseModerationStatus(key)
}
