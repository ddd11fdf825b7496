package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/photo-gallery-api/internal/database"
	"github.com/photo-gallery-api/internal/models"
)

const commentSelect = `
	SELECT c.id, c.title, c.commenter_name, c.commenter_email, c.comment_text,
	       c.photo_id, c.moderation_status, c.comment_date, ` + photoColumns + `
	FROM comments c
	JOIN photos p ON p.id = c.photo_id
`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and assigns its ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if _, err := uuid.Parse(comment.PhotoID); err != nil {
		return fmt.Errorf("photo %q: %w", comment.PhotoID, ErrNotFound)
	}
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}

	query := `
		INSERT INTO comments (id, title, commenter_name, commenter_email, comment_text, photo_id, moderation_status, comment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.Title, comment.CommenterName, comment.CommenterEmail,
		comment.CommentText, comment.PhotoID, string(comment.ModerationStatus), comment.CommentDate,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("photo %q: %w", comment.PhotoID, ErrNotFound)
	}
	return err
}

// GetByID retrieves a comment by ID with its photo expanded
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	comment, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns comments newest comment date first
func (r *commentRepo) List(ctx context.Context, q models.CommentQuery) ([]*models.Comment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if q.PhotoID != "" {
		if _, err := uuid.Parse(q.PhotoID); err != nil {
			return []*models.Comment{}, nil
		}
		args = append(args, q.PhotoID)
		conds = append(conds, fmt.Sprintf("c.photo_id = $%d", len(args)))
	}
	if q.Status != nil {
		args = append(args, string(*q.Status))
		conds = append(conds, fmt.Sprintf("c.moderation_status = $%d", len(args)))
	}

	query := commentSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.comment_date DESC, c.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// UpdateStatus overwrites the moderation status; the comment date is untouched
func (r *commentRepo) UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET moderation_status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	return comment, nil
}

// Delete removes a comment
func (r *commentRepo) Delete(ctx context.Context, id string) error {
	return execDelete(ctx, r.db, "DELETE FROM comments WHERE id = $1", id)
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		comment models.Comment
		photo   models.Photo
		status  string
	)
	err := row.Scan(
		&comment.ID, &comment.Title, &comment.CommenterName, &comment.CommenterEmail,
		&comment.CommentText, &comment.PhotoID, &status, &comment.CommentDate,
		&photo.ID, &photo.Title, &photo.Slug, &photo.Caption,
		&photo.Image.URL, &photo.Image.ImgixURL, &photo.UploadDate,
		&photo.Featured, &photo.EmailSource,
	)
	if err != nil {
		return nil, err
	}

	comment.ModerationStatus, err = models.ParseModerationStatus(status)
	if err != nil {
		return nil, err
	}
	comment.Photo = &photo
	return &comment, nil
}
