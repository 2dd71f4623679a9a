package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pithecene-io/mpub/iox"
)

// SubmitResult describes a listing submission.
type SubmitResult struct {
	// Method is POST for create, PUT for update.
	Method string
	// Path is the request path relative to the API base.
	Path string
	// Status is the HTTP status code, 0 if no response arrived.
	Status int
	// Body is the raw response payload. Populated for non-2xx responses too.
	Body []byte
	// PayloadBytes is the size of the JSON request body.
	PayloadBytes int64
}

// Client performs the marketplace calls made by an upload session.
// It holds no per-session state and is safe for concurrent use when its
// RequestFactory and Doer are.
type Client struct {
	requests RequestFactory
	doer     Doer
}

// NewClient creates a client. A nil doer uses http.DefaultClient.
func NewClient(requests RequestFactory, doer Doer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{requests: requests, doer: doer}
}

// FetchCategories returns the raw category list payload. Unauthenticated.
func (c *Client) FetchCategories(ctx context.Context) ([]byte, error) {
	req, err := c.requests.NewRequest(ctx, http.MethodGet, CategoriesPath, AuthNone, nil)
	if err != nil {
		return nil, err
	}
	_, body, err := c.do(req)
	return body, err
}

// ResolveCategory fetches the category list and returns the id of name.
func (c *Client) ResolveCategory(ctx context.Context, name string) (int, error) {
	body, err := c.FetchCategories(ctx)
	if err != nil {
		return 0, err
	}
	return ResolveCategoryID(body, name)
}

// ListCategories fetches and decodes the full category list.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	body, err := c.FetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeCategories(body)
}

// SubmitListing creates (zero id, POST) or updates (PUT) a listing.
// progress, if non-nil, receives cumulative request-body bytes as the
// transport consumes them.
func (c *Client) SubmitListing(ctx context.Context, id ItemID, listing Listing, progress iox.ProgressFunc) (*SubmitResult, error) {
	payload, err := listing.MarshalBody()
	if err != nil {
		return nil, fmt.Errorf("marshal listing: %w", err)
	}

	result := &SubmitResult{
		Method:       http.MethodPost,
		Path:         ItemsPath,
		PayloadBytes: int64(len(payload)),
	}
	if !id.IsZero() {
		result.Method = http.MethodPut
		result.Path = ItemPath(id)
	}

	body := iox.NewProgressReader(bytes.NewReader(payload), int64(len(payload)), progress)
	req, err := c.requests.NewRequest(ctx, result.Method, result.Path, AuthRequired, body)
	if err != nil {
		return result, err
	}
	req.ContentLength = int64(len(payload))
	req.Header.Set("Content-Type", "application/json")

	result.Status, result.Body, err = c.do(req)
	return result, err
}

// SyncInventory posts an empty authenticated request to the inventory
// endpoint. The payload is returned uninterpreted.
func (c *Client) SyncInventory(ctx context.Context) ([]byte, error) {
	req, err := c.requests.NewRequest(ctx, http.MethodPost, InventoryPath, AuthRequired, nil)
	if err != nil {
		return nil, err
	}
	_, body, err := c.do(req)
	return body, err
}

// do sends req and reads the whole response. Non-2xx yields *StatusError
// alongside the body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer iox.DiscardClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, body, fmt.Errorf("%w: read %s response: %w", ErrTransport, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, body, &StatusError{Code: resp.StatusCode, Body: body}
	}
	return resp.StatusCode, body, nil
}
