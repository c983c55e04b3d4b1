// Package storageclient is the Naming Service's HTTP client against a
// Storage Node's command endpoint (§6), used by C6's replication engine and
// by create_file/delete for storage_create/storage_delete/storage_copy.
package storageclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/latticefs/lattice/internal/naming/registry"
)

// Client issues JSON-over-HTTP commands against Storage Nodes' command ports.
type Client struct {
	httpClient *http.Client
}

// New constructs a Client with a bounded per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

func commandURL(n registry.Node, procedure string) string {
	return fmt.Sprintf("http://%s:%d/%s", n.StorageIP, n.CommandPort, procedure)
}

func (c *Client) post(ctx context.Context, url string, body any) (bool, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("storage node returned status %d: %s", resp.StatusCode, raw)
	}

	var result struct {
		Success bool `json:"success"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return false, fmt.Errorf("decode response: %w", err)
		}
	}
	return result.Success, nil
}

// Create issues storage_create(path) against node, per §6.
func (c *Client) Create(ctx context.Context, node registry.Node, path string) (bool, error) {
	return c.post(ctx, commandURL(node, "storage_create"), map[string]string{"path": path})
}

// Delete issues storage_delete(path) against node. Per §5's idempotence
// policy this is never an error on a no-op; success=false just means there
// was nothing to remove.
func (c *Client) Delete(ctx context.Context, node registry.Node, path string) error {
	_, err := c.post(ctx, commandURL(node, "storage_delete"), map[string]string{"path": path})
	return err
}

// Copy issues storage_copy(path, server_ip, server_port) against dst, asking
// it to pull path from src's client port.
func (c *Client) Copy(ctx context.Context, src, dst registry.Node, path string) error {
	body := map[string]any{
		"path":        path,
		"server_ip":   src.StorageIP,
		"server_port": src.ClientPort,
	}
	success, err := c.post(ctx, commandURL(dst, "storage_copy"), body)
	if err != nil {
		return err
	}
	if !success {
		return fmt.Errorf("storage_copy to %s:%d reported failure for %q", dst.StorageIP, dst.CommandPort, path)
	}
	return nil
}
