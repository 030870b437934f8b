// Package paperstore is the HTTP client for the document-management
// system that owns persistence. The engine itself does no I/O; trees
// and diagnostics are written here after extraction, and read back for
// renumber runs. Transactional guarantees (e.g. two simultaneous
// numbering runs on one paper) are the store's concern.
package paperstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/chalimba/papertree/internal/paper"
)

// Client communicates with the paper store HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PaperMeta is the stored metadata record for one paper.
type PaperMeta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Filename    string `json:"filename,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
	TotalMarks  int    `json:"total_marks"`
	Questions   int    `json:"questions"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// TreeRecord is the persisted output of one extraction run.
type TreeRecord struct {
	Tree        *paper.Tree        `json:"tree"`
	Diagnostics *paper.Diagnostics `json:"diagnostics"`
}

// RetryableError indicates a transient store failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable store error (status %d): %s", e.StatusCode, msg)
}

// PutPaper stores or updates paper metadata.
func (c *Client) PutPaper(ctx context.Context, meta PaperMeta) error {
	return c.put(ctx, "/papers/"+url.PathEscape(meta.ID), meta)
}

// GetPaper retrieves paper metadata. A missing paper returns (nil, nil).
func (c *Client) GetPaper(ctx context.Context, paperID string) (*PaperMeta, error) {
	var meta PaperMeta
	found, err := c.get(ctx, "/papers/"+url.PathEscape(paperID), &meta)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

// PutTree stores the extracted tree and diagnostics for a paper.
func (c *Client) PutTree(ctx context.Context, paperID string, rec TreeRecord) error {
	return c.put(ctx, "/papers/"+url.PathEscape(paperID)+"/tree", rec)
}

// GetTree retrieves the stored tree for a paper. A paper without a
// stored tree returns (nil, nil).
func (c *Client) GetTree(ctx context.Context, paperID string) (*TreeRecord, error) {
	var rec TreeRecord
	found, err := c.get(ctx, "/papers/"+url.PathEscape(paperID)+"/tree", &rec)
	if err != nil || !found {
		return nil, err
	}
	if rec.Tree != nil {
		rec.Tree.Reindex()
	}
	return &rec, nil
}

// DeletePaper removes a paper, its tree, and its hash index entry.
func (c *Client) DeletePaper(ctx context.Context, paperID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/papers/"+url.PathEscape(paperID), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete paper", paperID, resp)
	}
	return nil
}

// ListPapers lists stored paper metadata.
func (c *Client) ListPapers(ctx context.Context, limit int) ([]PaperMeta, error) {
	u := c.baseURL + "/papers"
	if limit > 0 {
		u += fmt.Sprintf("?limit=%d", limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list papers", "", resp)
	}
	var result struct {
		Papers []PaperMeta `json:"papers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode papers: %w", err)
	}
	return result.Papers, nil
}

// FindByHash looks up a stored paper by content hash, for upload dedup.
func (c *Client) FindByHash(ctx context.Context, hash string) (*PaperMeta, error) {
	var meta PaperMeta
	found, err := c.get(ctx, "/papers/by_hash/"+url.PathEscape(hash), &meta)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

func (c *Client) put(ctx context.Context, path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put", path, resp)
	}
	return nil
}

// get decodes into v and reports whether the resource exists.
func (c *Client) get(ctx context.Context, path string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, statusError("get", path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paperstore: %w", err)
	}
	return resp, nil
}

func statusError(op, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return fmt.Errorf("%s %s: status %d: %s", op, path, resp.StatusCode, string(body))
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
