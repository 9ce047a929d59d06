package driven

import "context"

// BlobStore holds raw document bytes outside the core.
// Locators are opaque to callers.
type BlobStore interface {
	// Store persists data and returns a locator for it. The name hint
	// is used for human-readable locators where the backend supports it.
	Store(ctx context.Context, name string, data []byte) (string, error)

	// Read returns the bytes behind a locator.
	Read(ctx context.Context, locator string) ([]byte, error)

	// Delete removes the bytes behind a locator.
	Delete(ctx context.Context, locator string) error
}
