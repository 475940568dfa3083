package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/model"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types, matched against the sniffed content.
var allowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// MediaService validates school images before they are forwarded.
type MediaService struct {
	maxBytes int64
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{maxBytes: cfg.MaxUploadBytes}
}

// PrepareImage reads an uploaded file and checks its size and content type.
// The declared Content-Type is ignored; the type is detected from the bytes.
func (s *MediaService) PrepareImage(header *multipart.FileHeader) (*model.ImageUpload, error) {
	if header.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxBytes)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedMIMETypes...) {
		return nil, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, mtype.String(), strings.Join(allowedMIMETypes, ", "))
	}

	return &model.ImageUpload{
		Filename:    filepath.Base(header.Filename),
		ContentType: mtype.String(),
		Data:        data,
	}, nil
}
