package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/photo-gallery-api/internal/mocks"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
)

func TestMockPhotoRepository_SlugUniqueness(t *testing.T) {
	repo := mocks.NewMockPhotoRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, &models.Photo{Title: "Sunset", Slug: "sunset-1"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, &models.Photo{Title: "Sunset again", Slug: "sunset-1"})
	if !errors.Is(err, repository.ErrSlugTaken) {
		t.Errorf("Expected ErrSlugTaken, got %v", err)
	}

	exists, err := repo.SlugExists(ctx, "sunset-1")
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected slug to exist")
	}

	if repo.Count() != 1 {
		t.Errorf("Expected 1 photo, got %d", repo.Count())
	}
}

func TestMockPhotoRepository_ListOrderAndFeatured(t *testing.T) {
	repo := mocks.NewMockPhotoRepository()
	ctx := context.Background()
	day := func(d int) models.Date {
		return models.NewDate(time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC))
	}

	photos := []*models.Photo{
		{Slug: "old", UploadDate: day(1), Featured: true},
		{Slug: "new", UploadDate: day(3)},
		{Slug: "mid", UploadDate: day(2), Featured: true},
	}
	for _, p := range photos {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := repo.List(ctx, models.PhotoQuery{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Slug != "new" || all[2].Slug != "old" {
		t.Errorf("Unexpected order: %v, %v, %v", all[0].Slug, all[1].Slug, all[2].Slug)
	}

	featured, err := repo.List(ctx, models.PhotoQuery{FeaturedOnly: true, Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(featured) != 1 || featured[0].Slug != "mid" {
		t.Errorf("Expected newest featured photo 'mid', got %v", featured)
	}
}

func TestMockCommentRepository_StatusFilter(t *testing.T) {
	repo := mocks.NewMockCommentRepository()
	ctx := context.Background()

	for _, c := range []*models.Comment{
		{PhotoID: "p1", ModerationStatus: models.StatusPending},
		{PhotoID: "p1", ModerationStatus: models.StatusApproved},
		{PhotoID: "p2", ModerationStatus: models.StatusApproved},
	} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	approved := models.StatusApproved
	got, err := repo.List(ctx, models.CommentQuery{PhotoID: "p1", Status: &approved})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].PhotoID != "p1" || got[0].ModerationStatus != models.StatusApproved {
		t.Errorf("Expected one approved comment on p1, got %v", got)
	}
}

func TestMockCommentRepository_UpdateMissing(t *testing.T) {
	repo := mocks.NewMockCommentRepository()

	_, err := repo.UpdateStatus(context.Background(), "missing", models.StatusApproved)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on delete, got %v", err)
	}
}
