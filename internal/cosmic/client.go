// Package cosmic implements the content and media repositories on top of the
// Cosmic headless CMS REST API.
package cosmic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/photo-gallery-api/internal/config"
	"github.com/rs/zerolog"
)

// Object types in the bucket
const (
	typePhotos   = "photos"
	typeComments = "comments"
)

// props requested on every object read
const objectProps = "id,title,slug,metadata,type"

// findPageSize is the page size used by findAll; the API's own maximum
var findPageSize = 1000

// APIError is a non-2xx response from the content API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cosmic: status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the content API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to a single Cosmic bucket
type Client struct {
	http      *http.Client
	apiURL    string
	uploadURL string
	bucket    string
	readKey   string
	writeKey  string
	log       zerolog.Logger
}

// NewClient creates a client for the configured bucket
func NewClient(cfg config.CosmicConfig, log zerolog.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		uploadURL: strings.TrimRight(cfg.UploadURL, "/"),
		bucket:    cfg.BucketSlug,
		readKey:   cfg.ReadKey,
		writeKey:  cfg.WriteKey,
		log:       log.With().Str("component", "cosmic").Logger(),
	}
}

// object is the envelope shared by every record kind
type object struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug,omitempty"`
	Title    string          `json:"title"`
	Type     string          `json:"type,omitempty"`
	Status   string          `json:"status,omitempty"`
	Metadata json.RawMessage `json:"metadata"`
}

type findResponse struct {
	Objects []object `json:"objects"`
	Total   int      `json:"total"`
}

type objectResponse struct {
	Object object `json:"object"`
}

// findParams mirrors the SDK's find(...).props().sort().limit().skip().depth() chain
type findParams struct {
	Query map[string]interface{}
	Sort  string
	Limit int
	Skip  int
	Depth int
}

// find lists one page of objects; a 404 means no matches and yields an empty slice
func (c *Client) find(ctx context.Context, p findParams) ([]object, error) {
	objs, _, err := c.findPage(ctx, p)
	return objs, err
}

// findAll pages through every match. Unpaged reads are capped by the API's
// default page size.
func (c *Client) findAll(ctx context.Context, p findParams) ([]object, error) {
	p.Limit = findPageSize
	p.Skip = 0

	all := []object{}
	for {
		page, total, err := c.findPage(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < p.Limit || (total > 0 && len(all) >= total) {
			return all, nil
		}
		p.Skip += len(page)
	}
}

func (c *Client) findPage(ctx context.Context, p findParams) ([]object, int, error) {
	query, err := json.Marshal(p.Query)
	if err != nil {
		return nil, 0, err
	}

	values := url.Values{}
	values.Set("read_key", c.readKey)
	values.Set("query", string(query))
	values.Set("props", objectProps)
	if p.Sort != "" {
		values.Set("sort", p.Sort)
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Skip > 0 {
		values.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Depth > 0 {
		values.Set("depth", strconv.Itoa(p.Depth))
	}

	var resp findResponse
	err = c.do(ctx, http.MethodGet, c.objectsURL("")+"?"+values.Encode(), nil, "", false, &resp)
	if IsNotFound(err) {
		return []object{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	if resp.Objects == nil {
		resp.Objects = []object{}
	}
	return resp.Objects, resp.Total, nil
}

// getObject fetches one object by id; nil when absent
func (c *Client) getObject(ctx context.Context, id string, depth int) (*object, error) {
	values := url.Values{}
	values.Set("read_key", c.readKey)
	values.Set("props", objectProps)
	if depth > 0 {
		values.Set("depth", strconv.Itoa(depth))
	}

	var resp objectResponse
	err := c.do(ctx, http.MethodGet, c.objectsURL(id)+"?"+values.Encode(), nil, "", false, &resp)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp.Object, nil
}

func (c *Client) insertObject(ctx context.Context, body interface{}) (*object, error) {
	var resp objectResponse
	if err := c.doJSON(ctx, http.MethodPost, c.objectsURL(""), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Object, nil
}

func (c *Client) updateObject(ctx context.Context, id string, body interface{}) (*object, error) {
	var resp objectResponse
	if err := c.doJSON(ctx, http.MethodPatch, c.objectsURL(id), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Object, nil
}

func (c *Client) deleteObject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.objectsURL(id), nil, "", true, nil)
}

func (c *Client) objectsURL(id string) string {
	u := fmt.Sprintf("%s/buckets/%s/objects", c.apiURL, url.PathEscape(c.bucket))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, method, endpoint, bytes.NewReader(payload), "application/json", true, out)
}

// do executes a request and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, write bool, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if write {
		req.Header.Set("Authorization", "Bearer "+c.writeKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cosmic: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cosmic: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
		if resp.StatusCode != http.StatusNotFound {
			c.log.Warn().
				Str("method", method).
				Int("status", resp.StatusCode).
				Str("message", apiErr.Message).
				Msg("Content API request failed")
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cosmic: failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fallback
}
