// internal/upload/sink.go
//
// Upload sink contract.
//
// File parts never travel past the body normalizer as bytes; they go to
// a Sink, and only the generated storage name enters the parameter map.
// Cleanup of orphaned assets is a policy concern outside this layer.

package upload

import "context"

// Sink stores one uploaded file's bytes and returns the server-assigned
// name the rest of the request refers to it by.
//
// Implementations must honor ctx: a canceled request must never leave a
// finalized storage name behind.
type Sink interface {
	Store(ctx context.Context, contentType string, data []byte) (string, error)
}
