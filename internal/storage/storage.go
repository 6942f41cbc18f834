// Package storage wraps the object store holding receipt templates
// (templates/<name>.dotx) and generated receipts
// (sponsor-pdf/<sponsorID>/<donationID>.pdf). The key layout doubles as the
// idempotency key for PDF generation and must not change.
package storage

import (
	"context"
	"time"
)

// ObjectStore is the narrow object-storage contract the entity layer needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
}
