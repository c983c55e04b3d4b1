package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the naming service
// and storage nodes. Use these keys consistently so log lines can be
// aggregated and queried across both binaries.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RPC operation
	// ========================================================================
	KeyOperation = "operation" // endpoint name: lock, unlock, create_file, ...
	KeyStatus    = "status"    // HTTP status code of the response

	// ========================================================================
	// Namespace
	// ========================================================================
	KeyPath       = "path"        // full file/directory path
	KeyParentPath = "parent_path" // parent directory path
	KeySize       = "size"        // file size in bytes

	// ========================================================================
	// I/O operations (storage node)
	// ========================================================================
	KeyOffset       = "offset"        // file offset for read/write
	KeyBytesRead    = "bytes_read"    // actual bytes read
	KeyBytesWritten = "bytes_written" // actual bytes written

	// ========================================================================
	// Peer identification
	// ========================================================================
	KeyClientIP    = "client_ip"    // remote client IP address
	KeyClientPort  = "client_port"  // storage node client port
	KeyCommandPort = "command_port" // storage node command port, its identity

	// ========================================================================
	// Locking (C5)
	// ========================================================================
	KeyExclusive  = "exclusive"   // whether the lock request is exclusive
	KeyQueueDepth = "queue_depth" // waiters queued on a node at grant/enqueue time
	KeyWaitMs     = "wait_ms"     // time spent waiting for the lock, in milliseconds

	// ========================================================================
	// Replication (C6)
	// ========================================================================
	KeySrcHost         = "src_host"         // source command_port for a replication task
	KeyDstHost         = "dst_host"         // destination command_port for a replication task
	KeyAccessCount     = "access_count"     // hot-read counter on a replica ledger entry
	KeyReplicatedCount = "replicated_count" // number of extra replicas beyond the primary

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
)

// TraceID returns a slog.Attr for the OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for the OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Operation returns a slog.Attr for the RPC operation name.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// Status returns a slog.Attr for an HTTP status code.
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }

// Path returns a slog.Attr for a namespace path.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// ParentPath returns a slog.Attr for a parent directory path.
func ParentPath(p string) slog.Attr { return slog.String(KeyParentPath, p) }

// Size returns a slog.Attr for a file size in bytes.
func Size(s int64) slog.Attr { return slog.Int64(KeySize, s) }

// Offset returns a slog.Attr for an I/O offset.
func Offset(off int64) slog.Attr { return slog.Int64(KeyOffset, off) }

// BytesRead returns a slog.Attr for bytes read.
func BytesRead(n int) slog.Attr { return slog.Int(KeyBytesRead, n) }

// BytesWritten returns a slog.Attr for bytes written.
func BytesWritten(n int) slog.Attr { return slog.Int(KeyBytesWritten, n) }

// ClientIP returns a slog.Attr for a remote client's IP address.
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// ClientPort returns a slog.Attr for a storage node's client port.
func ClientPort(port int) slog.Attr { return slog.Int(KeyClientPort, port) }

// CommandPort returns a slog.Attr for a storage node's command port, its identity.
func CommandPort(port int) slog.Attr { return slog.Int(KeyCommandPort, port) }

// Exclusive returns a slog.Attr for whether a lock request is exclusive.
func Exclusive(excl bool) slog.Attr { return slog.Bool(KeyExclusive, excl) }

// QueueDepth returns a slog.Attr for the number of waiters queued on a node.
func QueueDepth(n int) slog.Attr { return slog.Int(KeyQueueDepth, n) }

// WaitMs returns a slog.Attr for time spent waiting for a lock.
func WaitMs(ms float64) slog.Attr { return slog.Float64(KeyWaitMs, ms) }

// SrcHost returns a slog.Attr for a replication task's source command_port.
func SrcHost(port int) slog.Attr { return slog.Int(KeySrcHost, port) }

// DstHost returns a slog.Attr for a replication task's destination command_port.
func DstHost(port int) slog.Attr { return slog.Int(KeyDstHost, port) }

// AccessCount returns a slog.Attr for a replica ledger's hot-read counter.
func AccessCount(n int) slog.Attr { return slog.Int(KeyAccessCount, n) }

// ReplicatedCount returns a slog.Attr for the number of extra replicas held.
func ReplicatedCount(n int) slog.Attr { return slog.Int(KeyReplicatedCount, n) }

// DurationMs returns a slog.Attr for an operation's duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a zero Attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
