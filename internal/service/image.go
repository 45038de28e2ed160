package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/storage"
)

const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageService decodes base64 data URIs and stores them as recipe images.
type ImageService struct {
	store storage.ImageStore
	log   *logger.Logger
}

func NewImageService(store storage.ImageStore, baseLog *logger.Logger) *ImageService {
	return &ImageService{store: store, log: baseLog.With("service", "ImageService")}
}

// SaveDataURI stores "data:image/<type>;base64,<payload>" and returns the stored reference.
func (s *ImageService) SaveDataURI(ctx context.Context, dataURI string) (string, error) {
	invalid := apperr.ValidationWithDetails("validation failed", map[string]string{"image": "must be a base64 encoded image"})

	header, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return "", invalid
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", invalid
	}
	if len(data) > maxImageBytes {
		return "", apperr.ValidationWithDetails("validation failed", map[string]string{"image": "must not exceed 5 MB"})
	}

	// Trust the bytes, not the declared type.
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", invalid
	}

	key := "recipes/images/" + uuid.NewString() + "." + ext
	ref, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		return "", apperr.Internal("failed to store image", err)
	}
	s.log.Debug("Image stored", "ref", ref, "bytes", len(data))
	return ref, nil
}

func (s *ImageService) Remove(ctx context.Context, ref string) error {
	return s.store.Delete(ctx, ref)
}
