package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RegisterRequest is the body of POST /register (§6).
type RegisterRequest struct {
	StorageIP   string   `json:"storage_ip"`
	ClientPort  int      `json:"client_port"`
	CommandPort int      `json:"command_port"`
	Files       []string `json:"files"`
}

// RegistrationClient issues the one-shot registration call against the
// Naming Service's registration port, mirroring storageclient.Client's
// thin post-and-decode shape.
type RegistrationClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewRegistrationClient constructs a client against a Naming Service
// listening at ip:port for registrations.
func NewRegistrationClient(ip string, port int, timeout time.Duration) *RegistrationClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RegistrationClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    fmt.Sprintf("http://%s:%d", ip, port),
	}
}

// registrationError carries the naming service's exception_type so
// RegisterWithRetry can distinguish a permanent rejection (duplicate
// registration) from a transient failure worth retrying.
type registrationError struct {
	status int
	kind   string
	detail string
}

func (e *registrationError) Error() string {
	return fmt.Sprintf("registration failed (%d %s): %s", e.status, e.kind, e.detail)
}

// IsIllegalState reports whether err is the Naming Service's 409 rejection
// of an exact-duplicate registration.
func IsIllegalState(err error) bool {
	re, ok := err.(*registrationError)
	return ok && re.status == http.StatusConflict
}

// Register issues one POST /register call and returns the duplicate files
// the Naming Service reports this Storage Node already holds stale copies
// of.
func (c *RegistrationClient) Register(ctx context.Context, req RegisterRequest) ([]string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var exc struct {
			Type string `json:"exception_type"`
			Info string `json:"exception_info"`
		}
		_ = json.Unmarshal(raw, &exc)
		return nil, &registrationError{status: resp.StatusCode, kind: strings.TrimSpace(exc.Type), detail: exc.Info}
	}

	var result struct {
		Files []string `json:"files"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, err
		}
	}
	return result.Files, nil
}
