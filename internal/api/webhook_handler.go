package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photo-gallery-api/internal/config"
	"github.com/photo-gallery-api/internal/models"
	"github.com/photo-gallery-api/internal/service"
	"github.com/photo-gallery-api/internal/validation"
	"github.com/rs/zerolog"
)

const webhookSecretHeader = "X-Webhook-Secret"

// emailPayload is the JSON body posted by the inbound-mail provider
type emailPayload struct {
	From        string              `json:"from"`
	To          []string            `json:"to"`
	Subject     string              `json:"subject"`
	Attachments []attachmentPayload `json:"attachments"`
}

type attachmentPayload struct {
	Filename    string            `json:"filename"`
	ContentType string            `json:"contentType"`
	Size        *int64            `json:"size"`
	Content     attachmentContent `json:"content"`
}

// attachmentContent accepts a base64 string, a byte array, or a serialized
// Node Buffer ({"type":"Buffer","data":[...]})
type attachmentContent []byte

func (a *attachmentContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			if decoded, err = base64.RawStdEncoding.DecodeString(s); err != nil {
				return fmt.Errorf("attachment content is not base64: %w", err)
			}
		}
		*a = decoded
		return nil
	case '[':
		return a.fromByteArray(data)
	case '{':
		var buf struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &buf); err != nil {
			return err
		}
		if buf.Type != "Buffer" {
			return fmt.Errorf("unsupported attachment content type %q", buf.Type)
		}
		return a.fromByteArray(buf.Data)
	default:
		return errors.New("unsupported attachment content encoding")
	}
}

// fromByteArray decodes [1,2,3]; encoding/json would expect base64 for a []byte
func (a *attachmentContent) fromByteArray(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return fmt.Errorf("attachment byte %d out of range", v)
		}
		out[i] = byte(v)
	}
	*a = out
	return nil
}

// toAttachments converts the payload into domain attachments. A declared size
// is passed through as is, zero included; only an absent one is taken from
// the decoded content.
func toAttachments(in []attachmentPayload) []models.EmailAttachment {
	out := make([]models.EmailAttachment, 0, len(in))
	for _, a := range in {
		size := int64(len(a.Content))
		if a.Size != nil {
			size = *a.Size
		}
		out = append(out, models.EmailAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        size,
			Content:     a.Content,
		})
	}
	return out
}

// WebhookHandler handles the inbound email webhook
type WebhookHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "webhook").Logger(),
	}
}

// Describe handles GET /api/email-webhook
func (h *WebhookHandler) Describe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":          "Email webhook endpoint is running",
		"supportedMethods": []string{"POST"},
		"targetEmail":      h.cfg.Ingest.TargetEmail,
	})
}

// Receive handles POST /api/email-webhook
func (h *WebhookHandler) Receive(c *gin.Context) {
	if secret := h.cfg.Ingest.WebhookSecret; secret != "" && !secretEqual(c.GetHeader(webhookSecretHeader), secret) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("Webhook secret mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if limit := h.cfg.Ingest.MaxBodyBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var payload emailPayload
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
		h.log.Warn().Err(err).Msg("Failed to decode webhook payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if payload.From == "" || payload.To == nil || payload.Attachments == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required email fields"})
		return
	}

	if !validation.RecipientMatches(payload.To, h.cfg.Ingest.TargetEmail) {
		h.log.Info().Strs("to", payload.To).Msg("Email not addressed to upload address")
		c.JSON(http.StatusOK, gin.H{"message": "Email not for photo upload address"})
		return
	}

	from := validation.ExtractEmailAddress(payload.From)
	h.log.Info().
		Str("from", from).
		Str("subject", payload.Subject).
		Int("attachments", len(payload.Attachments)).
		Msg("Processing inbound email")

	results := h.services.Ingest.Process(c.Request.Context(), from, payload.Subject, toAttachments(payload.Attachments))

	c.JSON(http.StatusOK, gin.H{
		"message": "Email processed",
		"results": results,
		"summary": models.Summarize(results),
	})
}
