package api

// registerRequest is /register's body (§6).
type registerRequest struct {
	StorageIP   string   `json:"storage_ip" validate:"required,ip"`
	ClientPort  int      `json:"client_port" validate:"required,gt=0,lt=65536"`
	CommandPort int      `json:"command_port" validate:"required,gt=0,lt=65536"`
	Files       []string `json:"files"`
}

// registerResponse is /register's success body.
type registerResponse struct {
	Files []string `json:"files"`
}

// pathRequest is the body shared by every path-only service endpoint
// (is_valid_path, getstorage, list, is_directory, is_file, create_directory,
// create_file, delete, unlock).
type pathRequest struct {
	Path string `json:"path" validate:"required"`
}

// lockRequest is /lock's body.
type lockRequest struct {
	Path      string `json:"path" validate:"required"`
	Exclusive bool   `json:"exclusive"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type storageLocationResponse struct {
	ServerIP   string `json:"server_ip"`
	ServerPort int    `json:"server_port"`
}

type listResponse struct {
	Files []string `json:"files"`
}
