package mocks

import (
	"context"
	"sync"

	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/service"
)

// MockIngestService is a mock implementation of IngestService
type MockIngestService struct {
	mu          sync.Mutex
	ProcessFunc func(ctx context.Context, fromAddress, subject string, attachments []models.EmailAttachment) []models.PhotoUploadResult
	Calls       int
	LastFrom    string
	LastSubject string
	LastFiles   []models.EmailAttachment
}

// Verify interface compliance
var _ service.IngestService = (*MockIngestService)(nil)

func NewMockIngestService() *MockIngestService {
	return &MockIngestService{}
}

func (m *MockIngestService) Process(ctx context.Context, fromAddress, subject string, attachments []models.EmailAttachment) []models.PhotoUploadResult {
	m.mu.Lock()
	m.Calls++
	m.LastFrom = fromAddress
	m.LastSubject = subject
	m.LastFiles = attachments
	m.mu.Unlock()

	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, fromAddress, subject, attachments)
	}
	results := make([]models.PhotoUploadResult, 0, len(attachments))
	for _, a := range attachments {
		results = append(results, models.PhotoUploadResult{Success: true, PhotoID: "p-" + a.Filename, Filename: a.Filename})
	}
	return results
}

// MockModerationService is a mock implementation of ModerationService
type MockModerationService struct {
	ListByStatusFunc func(ctx context.Context, filter string) ([]*models.Comment, error)
	ListApprovedFunc func(ctx context.Context, photoID string) ([]*models.Comment, error)
	SubmitFunc       func(ctx context.Context, req *models.SubmitCommentRequest) (*models.Comment, error)
	SetStatusFunc    func(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error)
	StatsFunc        func(ctx context.Context) (*models.CommentStats, error)
	DeleteFunc       func(ctx context.Context, id string) error
	Submitted        []*models.SubmitCommentRequest
}

// Verify interface compliance
var _ service.ModerationService = (*MockModerationService)(nil)

func NewMockModerationService() *MockModerationService {
	return &MockModerationService{}
}

func (m *MockModerationService) ListByStatus(ctx context.Context, filter string) ([]*models.Comment, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, filter)
	}
	return []*models.Comment{}, nil
}

func (m *MockModerationService) ListApproved(ctx context.Context, photoID string) ([]*models.Comment, error) {
	if m.ListApprovedFunc != nil {
		return m.ListApprovedFunc(ctx, photoID)
	}
	return []*models.Comment{}, nil
}

func (m *MockModerationService) Submit(ctx context.Context, req *models.SubmitCommentRequest) (*models.Comment, error) {
	m.Submitted = append(m.Submitted, req)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return &models.Comment{
		ID:               "comment-1",
		Title:            models.CommentTitle(req.CommenterName),
		CommenterName:    req.CommenterName,
		CommentText:      req.CommentText,
		PhotoID:          req.PhotoID,
		ModerationStatus: models.StatusPending,
	}, nil
}

func (m *MockModerationService) SetStatus(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return &models.Comment{ID: id, ModerationStatus: status}, nil
}

func (m *MockModerationService) Stats(ctx context.Context) (*models.CommentStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.CommentStats{}, nil
}

func (m *MockModerationService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockGalleryService is a mock implementation of GalleryService
type MockGalleryService struct {
	ListPhotosFunc    func(ctx context.Context) ([]*models.Photo, error)
	GetBySlugFunc     func(ctx context.Context, slug string) (*models.Photo, error)
	FeaturedPhotoFunc func(ctx context.Context) (*models.Photo, error)
	DeletePhotoFunc   func(ctx context.Context, id string) error
}

// Verify interface compliance
var _ service.GalleryService = (*MockGalleryService)(nil)

func NewMockGalleryService() *MockGalleryService {
	return &MockGalleryService{}
}

func (m *MockGalleryService) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	if m.ListPhotosFunc != nil {
		return m.ListPhotosFunc(ctx)
	}
	return []*models.Photo{}, nil
}

func (m *MockGalleryService) GetPhotoBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *MockGalleryService) FeaturedPhoto(ctx context.Context) (*models.Photo, error) {
	if m.FeaturedPhotoFunc != nil {
		return m.FeaturedPhotoFunc(ctx)
	}
	return nil, nil
}

func (m *MockGalleryService) DeletePhoto(ctx context.Context, id string) error {
	if m.DeletePhotoFunc != nil {
		return m.DeletePhotoFunc(ctx, id)
	}
	return nil
}
