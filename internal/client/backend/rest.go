package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/common"
)

// RESTClient talks to the backend's JSON API over HTTP.
type RESTClient struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient returns a client for the API rooted at baseURL
// (e.g. "https://api.example.com"). No per-request timeout is set here;
// callers bound each call with a context deadline.
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

func (c *RESTClient) Close() error { return nil }

// do performs one JSON request. A non-nil out is decoded from the response
// body. Transport and server-side failures are both reported as
// common.ErrTransientNetwork: from the sync engine's point of view they are
// the same thing — retry on the next cycle.
func (c *RESTClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", common.ErrTransientNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s %s", common.ErrorUnauthorized, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %s: %s", common.ErrTransientNetwork, method, path, resp.Status, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %s %s: decode response: %v", common.ErrTransientNetwork, method, path, err)
		}
	}
	return nil
}

// Login exchanges credentials for a bearer token kept on the client.
func (c *RESTClient) Login(ctx context.Context, username, password string) error {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", in, &resp); err != nil {
		return err
	}
	c.accessToken = resp.AccessToken
	return nil
}

// Ping probes backend reachability. Used by the connectivity monitor.
func (c *RESTClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *RESTClient) InsertBatch(ctx context.Context, b BatchInsert) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/batches", b, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *RESTClient) InsertItems(ctx context.Context, batchID string, items []ItemInsert) error {
	path := "/api/v1/batches/" + url.PathEscape(batchID) + "/items"
	return c.do(ctx, http.MethodPost, path, items, nil)
}

func (c *RESTClient) InsertItem(ctx context.Context, batchID string, item ItemInsert) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	in := struct {
		BatchID string `json:"medicao_id"`
		ItemInsert
	}{batchID, item}
	if err := c.do(ctx, http.MethodPost, "/api/v1/items", in, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *RESTClient) UpdateItemAttachment(ctx context.Context, itemID string, url_, thumbnailURL string) error {
	path := "/api/v1/items/" + url.PathEscape(itemID) + "/attachment"
	in := map[string]string{"image": url_, "thumbnail_url": thumbnailURL}
	return c.do(ctx, http.MethodPatch, path, in, nil)
}

func (c *RESTClient) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	if err := c.do(ctx, http.MethodGet, "/api/v1/clients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RESTClient) ListAreas(ctx context.Context, clientID int64) ([]models.WorkArea, error) {
	var out []models.WorkArea
	path := "/api/v1/clients/" + strconv.FormatInt(clientID, 10) + "/areas"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RESTClient) ListPoints(ctx context.Context, areaID string) ([]models.CollectionPoint, error) {
	var out []models.CollectionPoint
	path := "/api/v1/areas/" + url.PathEscape(areaID) + "/points"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RESTClient) ListMeasurementTypes(ctx context.Context) ([]models.MeasurementType, error) {
	var out []models.MeasurementType
	if err := c.do(ctx, http.MethodGet, "/api/v1/measurement-types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RESTClient) ActiveVersion(ctx context.Context) (*AppVersion, error) {
	var out AppVersion
	if err := c.do(ctx, http.MethodGet, "/api/v1/version/active", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) InsertActionLog(ctx context.Context, e ActionLogEntry) error {
	return c.do(ctx, http.MethodPost, "/api/v1/actions", e, nil)
}
