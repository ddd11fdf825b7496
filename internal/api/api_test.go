package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/photo-gallery-api/internal/api"
	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/metrics"
	"github.com/photo-gallery-api/internal/mocks"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/repository"
	"github.com/photo-gallery-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "jeffhovingaphotos@gmail.com"

type testServer struct {
	router     *gin.Engine
	ingest     *mocks.MockIngestService
	moderation *mocks.MockModerationService
	gallery    *mocks.MockGalleryService
}

func setupTestRouter(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		ingest:     mocks.NewMockIngestService(),
		moderation: mocks.NewMockModerationService(),
		gallery:    mocks.NewMockGalleryService(),
	}
	services := &service.Services{
		Ingest:     ts.ingest,
		Moderation: ts.moderation,
		Gallery:    ts.gallery,
	}

	cfg := &config.Config{
		StoreBackend: config.BackendCosmic,
		Ingest: config.IngestConfig{
			AllowedSenders: []string{target},
			TargetEmail:    target,
			MaxBodyBytes:   1 << 20,
		},
	}
	for _, m := range mutate {
		m(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ts.router = api.NewRouter(ctx, services, cfg, metrics.New(), zerolog.Nop())
	return ts
}

func (ts *testServer) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("GET", "/health", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["backend"] != "cosmic" {
		t.Errorf("Expected backend 'cosmic', got %v", response["backend"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestRouter(t)
	ts.do("GET", "/health", nil)

	w := ts.do("GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gallery_http_requests_total")
}

func TestWebhook_Describe(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("GET", "/api/email-webhook", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "Email webhook endpoint is running", response["message"])
	assert.Equal(t, []interface{}{"POST"}, response["supportedMethods"])
	assert.Equal(t, target, response["targetEmail"])
}

func TestWebhook_InvalidJSON(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("POST", "/api/email-webhook", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request format", decode(t, w)["error"])
	assert.Equal(t, 0, ts.ingest.Calls)
}

func TestWebhook_MissingFields(t *testing.T) {
	ts := setupTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"no from", `{"to":["` + target + `"],"attachments":[]}`},
		{"no to", `{"from":"a@b.c","attachments":[]}`},
		{"no attachments", `{"from":"a@b.c","to":["` + target + `"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do("POST", "/api/email-webhook", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Missing required email fields", decode(t, w)["error"])
		})
	}
	assert.Equal(t, 0, ts.ingest.Calls)
}

func TestWebhook_NotForUploadAddress(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("POST", "/api/email-webhook", map[string]interface{}{
		"from":        target,
		"to":          []string{"other@x.com"},
		"attachments": []interface{}{},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email not for photo upload address", decode(t, w)["message"])
	assert.Equal(t, 0, ts.ingest.Calls)
}

func TestWebhook_ProcessesAttachments(t *testing.T) {
	ts := setupTestRouter(t)
	ts.ingest.ProcessFunc = func(ctx context.Context, from, subject string, atts []models.EmailAttachment) []models.PhotoUploadResult {
		return []models.PhotoUploadResult{
			{Success: true, PhotoID: "p1", Slug: "a-1-1", Filename: "a.jpg"},
			{Success: false, Filename: "b.jpg", Error: "Failed to process b.jpg: boom"},
		}
	}

	body := `{
		"from": "Jeff Hovinga <` + target + `>",
		"to": ["Photos <` + strings.ToUpper(target) + `>"],
		"subject": "Sunset",
		"attachments": [
			{"filename": "a.jpg", "contentType": "image/jpeg", "size": 3, "content": "AQID"},
			{"filename": "b.jpg", "contentType": "image/jpeg", "content": [1, 2, 3, 4]},
			{"filename": "c.png", "contentType": "image/png", "size": 2, "content": {"type": "Buffer", "data": [9, 8]}}
		]
	}`
	w := ts.do("POST", "/api/email-webhook", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	response := decode(t, w)
	assert.Equal(t, "Email processed", response["message"])
	assert.Equal(t, map[string]interface{}{"total": float64(2), "success": float64(1), "errors": float64(1)}, response["summary"])

	require.Equal(t, 1, ts.ingest.Calls)
	assert.Equal(t, target, ts.ingest.LastFrom)
	assert.Equal(t, "Sunset", ts.ingest.LastSubject)
	require.Len(t, ts.ingest.LastFiles, 3)
	assert.Equal(t, []byte{1, 2, 3}, ts.ingest.LastFiles[0].Content)
	assert.Equal(t, []byte{1, 2, 3, 4}, ts.ingest.LastFiles[1].Content)
	assert.Equal(t, int64(4), ts.ingest.LastFiles[1].Size)
	assert.Equal(t, []byte{9, 8}, ts.ingest.LastFiles[2].Content)
}

func TestWebhook_ExplicitZeroSizeIsKept(t *testing.T) {
	ts := setupTestRouter(t)

	body := `{"from":"a@b.c","to":["` + target + `"],"attachments":[` +
		`{"filename":"a.jpg","contentType":"image/jpeg","size":0,"content":"aGVsbG8="},` +
		`{"filename":"b.jpg","contentType":"image/jpeg","content":"aGVsbG8="}]}`
	w := ts.do("POST", "/api/email-webhook", body)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.ingest.LastFiles, 2)
	assert.Equal(t, int64(0), ts.ingest.LastFiles[0].Size)
	assert.Equal(t, int64(5), ts.ingest.LastFiles[1].Size)
}

func TestWebhook_ZeroSizeAttachmentIsNotUploaded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos, photos, _, media := mocks.NewMockRepositories()
	cfg := &config.Config{
		StoreBackend: config.BackendCosmic,
		Ingest: config.IngestConfig{
			AllowedSenders: []string{target},
			TargetEmail:    target,
			Concurrency:    1,
		},
	}
	m := metrics.New()
	router := api.NewRouter(context.Background(), service.NewServices(repos, cfg, m, zerolog.Nop()), cfg, m, zerolog.Nop())

	body := `{"from":"` + target + `","to":["` + target + `"],"attachments":[` +
		`{"filename":"a.jpg","contentType":"image/jpeg","size":0,"content":"aGVsbG8="}]}`
	req := httptest.NewRequest("POST", "/api/email-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, map[string]interface{}{"total": float64(1), "success": float64(0), "errors": float64(1)}, response["summary"])
	assert.Equal(t, 0, media.UploadCount())
	assert.Equal(t, 0, photos.Count())
}

func TestWebhook_UndecodableContent(t *testing.T) {
	ts := setupTestRouter(t)

	body := `{"from":"a@b.c","to":["` + target + `"],"attachments":[{"filename":"a.jpg","contentType":"image/jpeg","content":[300]}]}`
	w := ts.do("POST", "/api/email-webhook", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, ts.ingest.Calls)
}

func TestWebhook_PanicReturns500(t *testing.T) {
	ts := setupTestRouter(t)
	ts.ingest.ProcessFunc = func(ctx context.Context, from, subject string, atts []models.EmailAttachment) []models.PhotoUploadResult {
		panic("store exploded")
	}

	body := `{"from":"a@b.c","to":["` + target + `"],"attachments":[]}`
	w := ts.do("POST", "/api/email-webhook", body)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decode(t, w)
	assert.Equal(t, "Internal server error", response["error"])
	assert.Equal(t, "unexpected error while handling the request", response["details"])
	assert.NotContains(t, w.Body.String(), "store exploded")
}

func TestWebhook_Secret(t *testing.T) {
	ts := setupTestRouter(t, func(c *config.Config) { c.Ingest.WebhookSecret = "s3cret" })
	body := `{"from":"a@b.c","to":["` + target + `"],"attachments":[]}`

	w := ts.do("POST", "/api/email-webhook", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do("POST", "/api/email-webhook", body, "X-Webhook-Secret", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ts.ingest.Calls)
}

func TestPhotos_List(t *testing.T) {
	ts := setupTestRouter(t)
	ts.gallery.ListPhotosFunc = func(ctx context.Context) ([]*models.Photo, error) {
		return []*models.Photo{{
			ID: "p1", Slug: "sunset", Image: models.ImageRef{ImgixURL: "https://imgix.example.com/s.jpg"},
		}}, nil
	}

	w := ts.do("GET", "/v1/photos", nil)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	photos := response["photos"].([]interface{})
	require.Len(t, photos, 1)
	photo := photos[0].(map[string]interface{})
	assert.Equal(t, "sunset", photo["slug"])
	assert.Contains(t, photo["thumbnail_url"], "w=800")
}

func TestPhotos_Featured(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("GET", "/v1/photos/featured", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.gallery.FeaturedPhotoFunc = func(ctx context.Context) (*models.Photo, error) {
		return &models.Photo{ID: "p1", Slug: "star", Featured: true}, nil
	}
	w = ts.do("GET", "/v1/photos/featured", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "star", decode(t, w)["slug"])
}

func TestPhotos_DetailCommentsFailOpen(t *testing.T) {
	ts := setupTestRouter(t)
	ts.gallery.GetBySlugFunc = func(ctx context.Context, slug string) (*models.Photo, error) {
		if slug == "sunset" {
			return &models.Photo{ID: "p1", Slug: "sunset"}, nil
		}
		return nil, nil
	}
	var askedFor string
	ts.moderation.ListApprovedFunc = func(ctx context.Context, photoID string) ([]*models.Comment, error) {
		askedFor = photoID
		return nil, errors.New("comment store unavailable")
	}

	w := ts.do("GET", "/v1/photos/sunset", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", askedFor)
	assert.Equal(t, []interface{}{}, decode(t, w)["comments"])

	w = ts.do("GET", "/v1/photos/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments_Submit(t *testing.T) {
	ts := setupTestRouter(t)

	w := ts.do("POST", "/v1/comments", map[string]string{
		"commenter_name": "Ann",
		"comment_text":   "Lovely",
		"photo_id":       "p1",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, ts.moderation.Submitted, 1)
	assert.Equal(t, "Ann", ts.moderation.Submitted[0].CommenterName)
}

func TestComments_SubmitErrors(t *testing.T) {
	ts := setupTestRouter(t)
	ts.moderation.SubmitFunc = func(ctx context.Context, req *models.SubmitCommentRequest) (*models.Comment, error) {
		if req.PhotoID == "missing" {
			return nil, repository.ErrNotFound
		}
		return nil, service.ErrInvalidComment
	}

	w := ts.do("POST", "/v1/comments", map[string]string{"commenter_name": "", "comment_text": "x", "photo_id": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("POST", "/v1/comments", map[string]string{"commenter_name": "A", "comment_text": "x", "photo_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do("POST", "/v1/comments", "[")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	ts := setupTestRouter(t, func(c *config.Config) { c.Security.AdminToken = "admin" })

	w := ts.do("GET", "/v1/admin/comments", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do("GET", "/v1/admin/comments", nil, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do("GET", "/v1/admin/comments", nil, "Authorization", "Bearer admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_ListComments(t *testing.T) {
	ts := setupTestRouter(t)
	var gotFilter string
	ts.moderation.ListByStatusFunc = func(ctx context.Context, filter string) ([]*models.Comment, error) {
		gotFilter = filter
		if filter == "bogus" {
			return nil, service.ErrInvalidStatus
		}
		return []*models.Comment{{ID: "c1", ModerationStatus: models.StatusPending}}, nil
	}

	w := ts.do("GET", "/v1/admin/comments", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", gotFilter)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = ts.do("GET", "/v1/admin/comments?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_UpdateStatus(t *testing.T) {
	ts := setupTestRouter(t)
	ts.moderation.SetStatusFunc = func(ctx context.Context, id string, status models.ModerationStatus) (*models.Comment, error) {
		if id == "missing" {
			return nil, repository.ErrNotFound
		}
		return &models.Comment{ID: id, ModerationStatus: status}, nil
	}

	w := ts.do("PATCH", "/v1/admin/comments/c1", map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", decode(t, w)["moderation_status"])

	w = ts.do("PATCH", "/v1/admin/comments/c1", map[string]string{"status": "spam"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do("PATCH", "/v1/admin/comments/missing", map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_StatsAndDeletes(t *testing.T) {
	ts := setupTestRouter(t)
	ts.moderation.StatsFunc = func(ctx context.Context) (*models.CommentStats, error) {
		return &models.CommentStats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, nil
	}
	ts.gallery.DeletePhotoFunc = func(ctx context.Context, id string) error {
		return repository.ErrNotFound
	}

	w := ts.do("GET", "/v1/admin/comments/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["total"])

	w = ts.do("DELETE", "/v1/admin/comments/c1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do("DELETE", "/v1/admin/photos/p1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	ts := setupTestRouter(t, func(c *config.Config) {
		c.Security.RateLimitRPS = 0.001
		c.Security.RateLimitBurst = 2
	})
	body := map[string]string{"commenter_name": "A", "comment_text": "x", "photo_id": "p1"}

	assert.Equal(t, http.StatusCreated, ts.do("POST", "/v1/comments", body).Code)
	assert.Equal(t, http.StatusCreated, ts.do("POST", "/v1/comments", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do("POST", "/v1/comments", body).Code)
}

func TestRateLimit_IgnoresForwardedForFromUntrustedClients(t *testing.T) {
	ts := setupTestRouter(t, func(c *config.Config) {
		c.Security.RateLimitRPS = 0.001
		c.Security.RateLimitBurst = 1
	})
	body := map[string]string{"commenter_name": "A", "comment_text": "x", "photo_id": "p1"}

	assert.Equal(t, http.StatusCreated, ts.do("POST", "/v1/comments", body, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do("POST", "/v1/comments", body, "X-Forwarded-For", "10.0.0.2").Code)
}

func TestRateLimit_HonorsForwardedForFromTrustedProxy(t *testing.T) {
	// httptest requests arrive from 192.0.2.1
	ts := setupTestRouter(t, func(c *config.Config) {
		c.Server.TrustedProxies = []string{"192.0.2.1"}
		c.Security.RateLimitRPS = 0.001
		c.Security.RateLimitBurst = 1
	})
	body := map[string]string{"commenter_name": "A", "comment_text": "x", "photo_id": "p1"}

	assert.Equal(t, http.StatusCreated, ts.do("POST", "/v1/comments", body, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, ts.do("POST", "/v1/comments", body, "X-Forwarded-For", "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do("POST", "/v1/comments", body, "X-Forwarded-For", "10.0.0.2").Code)
}
