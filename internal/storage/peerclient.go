package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PeerClient pulls file bytes from another Storage Node's client port, for
// storage_copy (§4.6): the destination node initiates the pull, not the
// Naming Service.
type PeerClient struct {
	httpClient *http.Client
}

// NewPeerClient constructs a PeerClient with a bounded per-request timeout.
func NewPeerClient(timeout time.Duration) *PeerClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PeerClient{httpClient: &http.Client{Timeout: timeout}}
}

// Pull fetches path's full contents from the peer at ip:port's client
// endpoint, by first sizing it and then issuing one storage_read for the
// whole range.
func (c *PeerClient) Pull(ctx context.Context, ip string, port int, path string) ([]byte, error) {
	size, err := c.size(ctx, ip, port, path)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return c.read(ctx, ip, port, path, 0, size)
}

func (c *PeerClient) size(ctx context.Context, ip string, port int, path string) (int64, error) {
	var result struct {
		Size int64 `json:"size"`
	}
	if err := c.post(ctx, ip, port, "storage_size", map[string]string{"path": path}, &result); err != nil {
		return 0, err
	}
	return result.Size, nil
}

func (c *PeerClient) read(ctx context.Context, ip string, port int, path string, offset, length int64) ([]byte, error) {
	var result struct {
		Data string `json:"data"`
	}
	body := map[string]any{"path": path, "offset": offset, "length": length}
	if err := c.post(ctx, ip, port, "storage_read", body, &result); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(result.Data)
}

func (c *PeerClient) post(ctx context.Context, ip string, port int, procedure string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://%s:%d/%s", ip, port, procedure)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("peer %s:%d/%s returned status %d: %s", ip, port, procedure, resp.StatusCode, raw)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
