// Package schema generates a JSON Schema document describing the Naming
// Service's §6 request bodies, served at /schema on the registration port
// and fetched by `naming config schema`.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// RegisterRequest mirrors api.registerRequest for schema generation; the
// two are kept in sync by hand since the wire shape rarely changes.
type RegisterRequest struct {
	StorageIP   string   `json:"storage_ip" jsonschema:"required"`
	ClientPort  int      `json:"client_port" jsonschema:"required,minimum=1,maximum=65535"`
	CommandPort int      `json:"command_port" jsonschema:"required,minimum=1,maximum=65535"`
	Files       []string `json:"files"`
}

// PathRequest mirrors api.pathRequest, the body shared by every path-only
// service endpoint.
type PathRequest struct {
	Path string `json:"path" jsonschema:"required"`
}

// LockRequest mirrors api.lockRequest.
type LockRequest struct {
	Path      string `json:"path" jsonschema:"required"`
	Exclusive bool   `json:"exclusive"`
}

// Document is the top-level schema document: one property per endpoint
// body, so a single /schema response documents the whole service port.
type Document struct {
	Register      RegisterRequest `json:"register"`
	PathOperation PathRequest     `json:"path_operation"`
	Lock          LockRequest     `json:"lock"`
}

// Generate reflects Document into a JSON Schema document, in the same
// style as the teacher's `dfs config schema` command.
func Generate() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := reflector.Reflect(&Document{})
	s.Version = "https://json-schema.org/draft/2020-12/schema"
	s.Title = "Lattice Naming Service API"
	s.Description = "JSON Schema for the Naming Service's registration and service port request bodies"
	return json.MarshalIndent(s, "", "  ")
}
