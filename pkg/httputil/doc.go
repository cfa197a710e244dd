// Package httputil provides HTTP helpers for the flowlayout server.
//
// # Overview
//
// This package holds the small pieces every handler needs:
//
//   - [WriteJSON] and [WriteError]: consistent response bodies
//   - [StatusFor]: maps error codes to HTTP status codes
//   - [ReadBody]: size-limited request body reading
//   - [RequestID]: middleware that tags every request with an id
//
// # Errors
//
// Error responses always have the same shape:
//
//	{"error": {"code": "NO_START_NODE", "message": "no start node found in the process"}, "request_id": "..."}
//
// The code is taken from a [github.com/matzehuels/flowlayout/pkg/errors.Error]
// in the chain; other errors are reported as INTERNAL_ERROR with a generic
// message so internal details do not leak.
package httputil
