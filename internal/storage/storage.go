// Package storage puts recipe images on local disk or in S3.
package storage

import "context"

// ImageStore saves image bytes under key and returns a reference clients can fetch.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}
