// Package api is the naming service's external HTTP surface (C7, §6): two
// independent chi routers — one for the registration port, one for the
// service port — thin JSON decode/encode shims over service.Service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/latticefs/lattice/internal/cli/health"
	"github.com/latticefs/lattice/internal/cli/timeutil"
	"github.com/latticefs/lattice/internal/naming/api/schema"
	"github.com/latticefs/lattice/internal/naming/nerr"
	npath "github.com/latticefs/lattice/internal/naming/path"
	"github.com/latticefs/lattice/internal/naming/registry"
	"github.com/latticefs/lattice/internal/naming/service"
)

var validate = validator.New()

// Handlers wires service.Service to HTTP.
type Handlers struct {
	svc       *service.Service
	startedAt time.Time
}

// New constructs Handlers over svc.
func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc, startedAt: time.Now()}
}

// Health handles GET /health: a liveness probe, same response shape as the
// teacher's control-plane health endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	resp := health.Response{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	resp.Data.Service = "naming"
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

// Register handles POST /register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reg := registry.Registration{
		Node: registry.Node{
			StorageIP:   req.StorageIP,
			ClientPort:  req.ClientPort,
			CommandPort: req.CommandPort,
		},
		Files: req.Files,
	}

	duplicates, err := h.svc.Register(reg)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, registerResponse{Files: duplicates})
}

// IsValidPath handles POST /is_valid_path.
func (h *Handlers) IsValidPath(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	nerr.WriteJSON(w, successResponse{Success: h.svc.IsValidPath(req.Path)})
}

// GetStorage handles POST /getstorage.
func (h *Handlers) GetStorage(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	node, err := h.svc.GetStorage(req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, storageLocationResponse{ServerIP: node.StorageIP, ServerPort: node.ClientPort})
}

// List handles POST /list.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	files, res, err := h.svc.List(req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	if res != npath.Yes {
		nerr.WriteException(w, nerr.New(nerr.NotFound, "%q is not a directory", req.Path))
		return
	}
	nerr.WriteJSON(w, listResponse{Files: files})
}

// IsDirectory handles POST /is_directory.
func (h *Handlers) IsDirectory(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.IsDirectory(req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	if res == npath.NotFound {
		nerr.WriteException(w, nerr.New(nerr.NotFound, "%q does not exist", req.Path))
		return
	}
	nerr.WriteJSON(w, successResponse{Success: res == npath.Yes})
}

// IsFile handles POST /is_file.
func (h *Handlers) IsFile(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.IsFile(req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	if res == npath.NotFound {
		nerr.WriteException(w, nerr.New(nerr.NotFound, "%q does not exist", req.Path))
		return
	}
	nerr.WriteJSON(w, successResponse{Success: res == npath.Yes})
}

// CreateDirectory handles POST /create_directory.
func (h *Handlers) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ok, err := h.svc.CreateDirectory(r.Context(), req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, successResponse{Success: ok})
}

// CreateFile handles POST /create_file.
func (h *Handlers) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ok, err := h.svc.CreateFile(r.Context(), req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, successResponse{Success: ok})
}

// Delete handles POST /delete.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ok, err := h.svc.Delete(r.Context(), req.Path)
	if err != nil {
		nerr.WriteException(w, err)
		return
	}
	nerr.WriteJSON(w, successResponse{Success: ok})
}

// Lock handles POST /lock. It blocks for the request's lifetime until the
// lock is granted, per §6/S4.
func (h *Handlers) Lock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.Lock(r.Context(), req.Path, req.Exclusive); err != nil {
		nerr.WriteException(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Unlock handles POST /unlock.
func (h *Handlers) Unlock(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.Unlock(req.Path); err != nil {
		nerr.WriteException(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Schema handles GET /schema: a JSON Schema document for the registration
// and service ports' request bodies, for operator tooling and
// `naming config schema`.
func (h *Handlers) Schema(w http.ResponseWriter, r *http.Request) {
	doc, err := schema.Generate()
	if err != nil {
		nerr.WriteException(w, nerr.New(nerr.IOError, "failed to generate schema: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

// debugStatusResponse is /debug/status's body, backing the CLI's
// tablewriter-rendered `status` subcommand.
type debugStatusResponse struct {
	Nodes           []debugNodeStatus `json:"nodes"`
	RegistrySize    int               `json:"registry_size"`
	LiveLocks       int               `json:"live_locks"`
	ReplicationJobs int               `json:"replication_jobs_pending"`
}

type debugNodeStatus struct {
	StorageIP   string `json:"storage_ip"`
	ClientPort  int    `json:"client_port"`
	CommandPort int    `json:"command_port"`
	FileCount   int    `json:"file_count"`
}

// DebugStatus handles GET /debug/status: a snapshot of registry, lock and
// replication-queue state for the CLI status subcommand.
func (h *Handlers) DebugStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Status()
	resp := debugStatusResponse{
		Nodes:           make([]debugNodeStatus, 0, len(snap.Nodes)),
		RegistrySize:    snap.RegistrySize,
		LiveLocks:       snap.LiveLocks,
		ReplicationJobs: snap.ReplicationJobs,
	}
	for _, n := range snap.Nodes {
		resp.Nodes = append(resp.Nodes, debugNodeStatus{
			StorageIP:   n.StorageIP,
			ClientPort:  n.ClientPort,
			CommandPort: n.CommandPort,
			FileCount:   n.FileCount,
		})
	}
	nerr.WriteJSON(w, resp)
}
