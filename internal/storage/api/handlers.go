package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/latticefs/lattice/internal/cli/health"
	"github.com/latticefs/lattice/internal/cli/timeutil"
	"github.com/latticefs/lattice/internal/naming/nerr"
	"github.com/latticefs/lattice/internal/storage"
)

var validate = validator.New()

// Handlers wires storage.Node to HTTP.
type Handlers struct {
	node      *storage.Node
	startedAt time.Time
}

// New constructs Handlers over node.
func New(node *storage.Node) *Handlers {
	return &Handlers{node: node, startedAt: time.Now()}
}

// Health handles GET /health: a liveness probe, same response shape as the
// teacher's control-plane health endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	resp := health.Response{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	resp.Data.Service = "storage"
	resp.Data.StartedAt = h.startedAt.Format(time.RFC3339)
	resp.Data.Uptime = timeutil.FormatUptime(uptime.String())
	resp.Data.UptimeSec = int64(uptime.Seconds())
	nerr.WriteJSON(w, resp)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		nerr.WriteException(w, nerr.New(nerr.InvalidArgument, "invalid request body: %v", err))
		return false
	}
	if err := validate.Struct(v); err != nil {
		nerr.WriteException(w, nerr.New(nerr.InvalidArgument, "validation failed: %v", err))
		return false
	}
	return true
}

// Size handles POST /storage_size.
func (h *Handlers) Size(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	size, err := h.node.Store.Size(r.Context(), req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, sizeResponse{Size: size})
}

// Read handles POST /storage_read.
func (h *Handlers) Read(w http.ResponseWriter, r *http.Request) {
	var req readRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	data, err := h.node.Store.ReadRange(r.Context(), req.Path, req.Offset, req.Length)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, readResponse{Data: base64.StdEncoding.EncodeToString(data)})
}

// Write handles POST /storage_write.
func (h *Handlers) Write(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		nerr.WriteException(w, nerr.New(nerr.InvalidArgument, "invalid base64 payload: %v", err))
		return
	}
	if err := h.node.Store.WriteRange(r.Context(), req.Path, req.Offset, data); err != nil {
		nerr.WriteException(w, err)
		return
	}
	if size, err := h.node.Store.Size(r.Context(), req.Path); err == nil {
		_ = h.node.Index.Put(req.Path, size, time.Now())
	}
	nerr.WriteJSON(w, successResponse{Success: true})
}

// Create handles POST /storage_create.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ok, err := h.node.Store.Create(r.Context(), req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	if ok {
		_ = h.node.Index.Put(req.Path, 0, time.Now())
	}
	nerr.WriteJSON(w, successResponse{Success: ok})
}

// Delete handles POST /storage_delete.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ok, err := h.node.Store.Delete(r.Context(), req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	if ok {
		_ = h.node.Index.Delete(req.Path)
	}
	nerr.WriteJSON(w, successResponse{Success: ok})
}

// Copy handles POST /storage_copy: this node pulls path's bytes from the
// named peer's client port (§4.6 — the destination initiates the pull).
func (h *Handlers) Copy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	data, err := h.node.Peers.Pull(r.Context(), req.ServerIP, req.ServerPort, req.Path)
	if err != nil {
		nerr.WriteJSON(w, successResponse{Success: false})
		return
	}
	if err := h.node.Store.WriteWhole(r.Context(), req.Path, data); err != nil {
		nerr.WriteException(w, err)
		return
	}
	_ = h.node.Index.Put(req.Path, int64(len(data)), time.Now())
	nerr.WriteJSON(w, successResponse{Success: true})
}

// debugStatusResponse is /debug/status's body, backing the CLI's
// tablewriter-rendered `status` subcommand.
type debugStatusResponse struct {
	StorageIP    string `json:"storage_ip"`
	ClientPort   int    `json:"client_port"`
	CommandPort  int    `json:"command_port"`
	IndexedFiles int    `json:"indexed_files"`
}

// DebugStatus handles GET /debug/status.
func (h *Handlers) DebugStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.node.Index.Count()
	if err != nil {
		nerr.WriteException(w, nerr.New(nerr.IOError, "failed to count index: %v", err))
		return
	}
	nerr.WriteJSON(w, debugStatusResponse{
		StorageIP:    h.node.StorageIP,
		ClientPort:   h.node.ClientPort,
		CommandPort:  h.node.CommandPort,
		IndexedFiles: count,
	})
}
