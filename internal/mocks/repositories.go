package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
)

// MockPhotoRepository is an in-memory implementation of PhotoRepository
type MockPhotoRepository struct {
	mu             sync.Mutex
	Photos         map[string]*models.Photo // keyed by ID
	CreateFunc     func(ctx context.Context, photo *models.Photo) error
	SlugExistsFunc func(ctx context.Context, slug string) (bool, error)
	ListError      error
	CreateCalls    int
	nextID         int
}

var _ repository.PhotoRepository = (*MockPhotoRepository)(nil)

func NewMockPhotoRepository() *MockPhotoRepository {
	return &MockPhotoRepository{Photos: make(map[string]*models.Photo)}
}

func (m *MockPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	m.mu.Lock()
	m.CreateCalls++
	fn := m.CreateFunc
	m.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, photo); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Photos {
		if p.Slug == photo.Slug {
			return repository.ErrSlugTaken
		}
	}
	if photo.ID == "" {
		m.nextID++
		photo.ID = fmt.Sprintf("photo-%d", m.nextID)
	}
	stored := *photo
	m.Photos[photo.ID] = &stored
	return nil
}

func (m *MockPhotoRepository) GetBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Photos {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockPhotoRepository) List(ctx context.Context, query models.PhotoQuery) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	photos := make([]*models.Photo, 0, len(m.Photos))
	for _, p := range m.Photos {
		if query.FeaturedOnly && !p.Featured {
			continue
		}
		photos = append(photos, p)
	}
	sort.Slice(photos, func(i, j int) bool {
		if photos[i].UploadDate.Equal(photos[j].UploadDate.Time) {
			return photos[i].ID > photos[j].ID
		}
		return photos[i].UploadDate.After(photos[j].UploadDate.Time)
	})
	if query.Limit > 0 && len(photos) > query.Limit {
		photos = photos[:query.Limit]
	}
	return photos, nil
}

func (m *MockPhotoRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.SlugExistsFunc != nil {
		return m.SlugExistsFunc(ctx, slug)
	}
	p, _ := m.GetBySlug(ctx, slug)
	return p != nil, nil
}

func (m *MockPhotoRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Photos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Photos, id)
	return nil
}

// Count returns the number of stored photos
func (m *MockPhotoRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Photos)
}

// MockCommentRepository is an in-memory implementation of CommentRepository
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[string]*models.Comment
	InsertError error
	ListError   error
	CreateCalls int
	ListCalls   int
	nextID      int
}

var _ repository.CommentRepository = (*MockCommentRepository)(nil)

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[string]*models.Comment)}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}
	if comment.ID == "" {
		m.nextID++
		comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	}
	stored := *comment
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) List(ctx context.Context, query models.CommentQuery) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListError != nil {
		return nil, m.ListError
	}

	comments := make([]*models.Comment, 0, len(m.Comments))
	for _, c := range m.Comments {
		if query.PhotoID != "" && c.PhotoID != query.PhotoID {
			continue
		}
		if query.Status != nil && c.ModerationStatus != *query.Status {
			continue
		}
		cp := *c
		comments = append(comments, &cp)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CommentDate.Equal(comments[j].CommentDate.Time) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CommentDate.After(comments[j].CommentDate.Time)
	})
	return comments, nil
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.ModerationStatus = status
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Comments, id)
	return nil
}

// MockMediaStore records uploads and returns predictable URLs
type MockMediaStore struct {
	mu         sync.Mutex
	UploadFunc func(ctx context.Context, upload models.MediaUpload) (*models.ImageRef, error)
	Uploads    []models.MediaUpload
}

var _ repository.MediaStore = (*MockMediaStore)(nil)

func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{}
}

func (m *MockMediaStore) Upload(ctx context.Context, upload models.MediaUpload) (*models.ImageRef, error) {
	m.mu.Lock()
	m.Uploads = append(m.Uploads, upload)
	fn := m.UploadFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, upload)
	}
	return &models.ImageRef{
		URL:      "https://cdn.example.com/" + upload.Folder + "/" + upload.Filename,
		ImgixURL: "https://imgix.example.com/" + upload.Folder + "/" + upload.Filename,
	}, nil
}

// UploadCount returns the number of upload attempts
func (m *MockMediaStore) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Uploads)
}

// NewMockRepositories wires all in-memory repositories together
func NewMockRepositories() (*repository.Repositories, *MockPhotoRepository, *MockCommentRepository, *MockMediaStore) {
	photos := NewMockPhotoRepository()
	comments := NewMockCommentRepository()
	media := NewMockMediaStore()
	return &repository.Repositories{
		Photo:   photos,
		Comment: comments,
		Media:   media,
		Backend: "mock",
	}, photos, comments, media
}
