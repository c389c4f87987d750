package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mealtrack-go-api/internal/dto"
	"github.com/noah-isme/mealtrack-go-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadNotImage indicates the payload is not an image.
	ErrUploadNotImage = errors.New("file is not an image")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores student avatar images. Only images pass;
// the type check runs on the sniffed content, not the client's claim.
type UploadService interface {
	UploadAvatar(ctx context.Context, file *multipart.FileHeader) (dto.AvatarUploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/mealtrack-go-api/internal/service/upload"),
	}
}

func (s *uploadService) UploadAvatar(ctx context.Context, file *multipart.FileHeader) (dto.AvatarUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.avatar")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.AvatarUploadResponse{}, err
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.AvatarUploads().WithLabelValues("rejected_size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.AvatarUploadResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.AvatarUploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.AvatarUploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.AvatarUploads().WithLabelValues("rejected_size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.AvatarUploadResponse{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", mime.String()))
	if !strings.HasPrefix(mime.String(), "image/") {
		observability.AvatarUploads().WithLabelValues("rejected_type").Inc()
		span.RecordError(ErrUploadNotImage)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.AvatarUploadResponse{}, ErrUploadNotImage
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)

	url, err := s.storage.Upload(ctx, sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.AvatarUploads().WithLabelValues("storage_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.AvatarUploadResponse{}, err
	}

	observability.AvatarUploads().WithLabelValues("stored").Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.AvatarUploadResponse{
		URL:       url,
		FileName:  sanitizedName,
		MimeType:  mime.String(),
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}, nil
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("avatar-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".img"
	}
	return base + ext
}
