// Package storage talks to the artifact store's HTTP API. The service-role
// key lives only here, server-side; browsers get short-lived signed URLs.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

const (
	BucketProfilePictures = "profile-pictures"
	BucketSourceCode      = "source-code"
)

type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(baseURL, serviceKey string, httpClient *http.Client) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    trimmed,
		serviceKey: strings.TrimSpace(serviceKey),
		httpClient: httpClient,
	}
}

// Upload stores an object and returns the public-style reference URL that
// gets recorded on the submission. The reference is opaque to clients; reads
// go back through ResolveReference + SignURL.
func (c *Client) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error) {
	endpoint := c.baseURL + "/storage/v1/object/" + bucket + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", common.NewError(common.CodeInternal, "create upload request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("X-Upsert", "true")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", common.NewError(common.CodeUpstream, "upload object", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", upstreamError("upload rejected", resp)
	}
	return c.baseURL + "/storage/v1/object/public/" + bucket + "/" + escapePath(path), nil
}

type signRequest struct {
	ExpiresIn int64 `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// SignURL mints a capability URL valid for ttl. Every call re-derives the
// capability; nothing is cached, so revocation is just expiry.
func (c *Client) SignURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	payload, err := json.Marshal(signRequest{ExpiresIn: int64(ttl.Seconds())})
	if err != nil {
		return "", common.NewError(common.CodeInternal, "encode sign request", err)
	}
	endpoint := c.baseURL + "/storage/v1/object/sign/" + bucket + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", common.NewError(common.CodeInternal, "create sign request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", common.NewError(common.CodeUpstream, "sign object", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", upstreamError("sign rejected", resp)
	}
	var parsed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", common.NewError(common.CodeUpstream, "decode sign response", err)
	}
	signed := parsed.SignedURL
	if strings.HasPrefix(signed, "/") {
		signed = c.baseURL + "/storage/v1" + signed
	}
	return signed, nil
}

// Download fetches the object server-side for relay to callers that cannot
// follow a signed-URL redirect. The caller must close the body.
func (c *Client) Download(ctx context.Context, bucket, path string) (io.ReadCloser, string, error) {
	endpoint := c.baseURL + "/storage/v1/object/authenticated/" + bucket + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", common.NewError(common.CodeInternal, "create download request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", common.NewError(common.CodeUpstream, "download object", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", upstreamError("download rejected", resp)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
}

type listItem struct {
	ID       *string         `json:"id"`
	Name     string          `json:"name"`
	Metadata *objectMetadata `json:"metadata"`
}

type objectMetadata struct {
	ContentType string `json:"mimetype"`
	Size        int64  `json:"size"`
}

// List returns the entries under a prefix as a tagged variant: the store
// reports folders as rows with a null id, which callers should not have to
// know.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]Entry, error) {
	payload, err := json.Marshal(listRequest{Prefix: prefix, Limit: 100})
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "encode list request", err)
	}
	endpoint := c.baseURL + "/storage/v1/object/list/" + bucket
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "create list request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.NewError(common.CodeUpstream, "list objects", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("list rejected", resp)
	}
	var items []listItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, common.NewError(common.CodeUpstream, "decode list response", err)
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.ID == nil {
			entries = append(entries, Entry{Kind: EntryFolder, Name: item.Name})
			continue
		}
		entry := Entry{Kind: EntryFile, ID: *item.ID, Name: item.Name}
		if item.Metadata != nil {
			entry.ContentType = item.Metadata.ContentType
			entry.Size = item.Metadata.Size
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func upstreamError(context string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		detail := parsed.Message
		if detail == "" {
			detail = parsed.Error
		}
		if detail != "" {
			return common.NewError(common.CodeUpstream, fmt.Sprintf("%s: %s", context, detail), nil)
		}
	}
	return common.NewError(common.CodeUpstream, fmt.Sprintf("%s: status %d", context, resp.StatusCode), nil)
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
