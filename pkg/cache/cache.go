// Package cache stores layout and render results keyed by their inputs.
//
// A layout depends only on the input document and the layout options, so the
// same request can be answered from cache. Three backends are provided:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for servers sharing one cache
//   - [NullCache] when caching is disabled
//
// Keys are built by a [Keyer] from the SHA-256 of the document bytes and the
// options that influence the result.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

// DefaultTTL is how long results are kept when the caller does not say.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// A missing or expired key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// LayoutKeyOpts are the options that change a layout result.
type LayoutKeyOpts struct {
	Config     layout.Config `json:"config"`
	FirstStart bool          `json:"first_start"`
}

// RenderKeyOpts are the options that change a rendered artifact.
type RenderKeyOpts struct {
	LayoutKeyOpts
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of the document with hash docHash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// RenderKey identifies a rendering of the document with hash docHash.
	RenderKey(docHash string, opts RenderKeyOpts) string
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey hashes the document hash together with opts.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// RenderKey hashes the document hash together with opts.
func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render", docHash, opts)
}
