package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/math-u-t/litedrive/internal/logger"
	"github.com/math-u-t/litedrive/internal/metrics"
	"github.com/math-u-t/litedrive/internal/model"
	"github.com/math-u-t/litedrive/internal/repository"
	"github.com/math-u-t/litedrive/internal/storage"
)

const (
	flowUpload = "upload"
	flowDelete = "delete"
)

var tracer = otel.Tracer("github.com/math-u-t/litedrive/internal/service")

// UploadInput is the payload of one upload. FileData is base64-encoded.
// FileSize and MimeType are caller-declared and untrusted.
type UploadInput struct {
	FileName string
	FileData string
	OwnerID  string
	FileSize *int64
	MimeType string
}

// UploadResult is returned after both the object and its record are stored.
type UploadResult struct {
	Success     bool   `json:"success"`
	URL         string `json:"url"`
	FileName    string `json:"fileName"`
	ID          string `json:"-"`
	StoragePath string `json:"-"`
}

// DeleteInput identifies the record to delete and the caller claiming ownership.
type DeleteInput struct {
	FileID  string
	OwnerID string
}

// FileService defines the file use cases. Metadata is the source of truth for what
// the system contains; object existence is secondary and may lag behind it.
type FileService interface {
	// Upload writes the object, then its record. If the record cannot be written the
	// object is deleted again (best-effort) and ErrMetadataWrite is returned.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)

	// Delete removes the record, then best-effort removes the object. A failed object
	// delete leaves a logged orphan and still succeeds.
	Delete(ctx context.Context, in DeleteInput) error

	// List returns the owner's records, most recent first.
	List(ctx context.Context, ownerID string) ([]model.FileRecord, error)
}

// Option configures a FileService.
type Option func(*fileService)

// WithClock overrides the time source used for storage paths and createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *fileService) { s.now = now }
}

// WithLogger sets the logger used for failures and compensations.
func WithLogger(log *zap.Logger) Option {
	return func(s *fileService) { s.log = log }
}

// WithMetrics sets the recorder for compensations and orphans.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *fileService) { s.metrics = m }
}

type fileService struct {
	store   storage.Storage
	repo    repository.FileRepository
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Recorder
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, opts ...Option) FileService {
	s := &fileService{
		store: store,
		repo:  repo,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (res *UploadResult, err error) {
	ctx, span := tracer.Start(ctx, "FileService.Upload",
		trace.WithAttributes(attribute.String("file.owner_id", in.OwnerID)))
	defer func() { endSpan(span, err) }()

	if in.FileName == "" || in.FileData == "" || in.OwnerID == "" {
		return nil, ErrMissingFields
	}
	if in.FileSize != nil && *in.FileSize > model.MaxFileSize {
		return nil, ErrTooLarge
	}
	if in.MimeType != "" && !model.IsAllowedMimeType(in.MimeType) {
		return nil, ErrUnsupportedType
	}
	data, err := decodeFileData(in.FileData)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > model.MaxFileSize {
		return nil, ErrTooLarge
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = model.DefaultMimeType
	}

	log := logger.For(ctx, s.log).With(zap.String("flow", flowUpload), zap.String("owner_id", in.OwnerID))

	var storagePath string
	committed := false
	defer func() {
		if r := recover(); r != nil {
			log.Error("upload_panic", zap.Any("panic", r), zap.String("storage_path", storagePath))
			if storagePath != "" && !committed {
				s.compensate(ctx, flowUpload, storagePath)
			}
			res, err = nil, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	storagePath = model.StoragePath(in.OwnerID, s.now(), pathSafe(in.FileName))
	log = log.With(zap.String("storage_path", storagePath))
	span.SetAttributes(attribute.String("file.storage_path", storagePath), attribute.Int("file.size", len(data)))

	if _, err := s.store.Put(ctx, storagePath, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: mimeType,
	}); err != nil {
		log.Error("storage_write_failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	publicURL := s.store.PublicURL(storagePath)

	rec := &model.FileRecord{
		OwnerID:     in.OwnerID,
		FileName:    in.FileName,
		StoragePath: storagePath,
		FileSize:    int64(len(data)),
		MimeType:    mimeType,
		URL:         publicURL,
		CreatedAt:   s.now().UTC(),
	}
	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		log.Error("metadata_write_failed", zap.Error(err))
		s.compensate(ctx, flowUpload, storagePath)
		return nil, fmt.Errorf("%w: %w", ErrMetadataWrite, err)
	}
	committed = true

	log.Info("upload_completed", zap.String("file_id", id), zap.Int("file_size", len(data)))
	return &UploadResult{
		Success:     true,
		URL:         publicURL,
		FileName:    in.FileName,
		ID:          id,
		StoragePath: storagePath,
	}, nil
}

func (s *fileService) Delete(ctx context.Context, in DeleteInput) (err error) {
	ctx, span := tracer.Start(ctx, "FileService.Delete",
		trace.WithAttributes(attribute.String("file.owner_id", in.OwnerID), attribute.String("file.id", in.FileID)))
	defer func() { endSpan(span, err) }()

	if in.FileID == "" || in.OwnerID == "" {
		return ErrMissingFields
	}

	log := logger.For(ctx, s.log).With(
		zap.String("flow", flowDelete),
		zap.String("owner_id", in.OwnerID),
		zap.String("file_id", in.FileID),
	)

	rec, err := s.repo.FindOne(ctx, in.FileID, in.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		log.Error("metadata_lookup_failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	n, err := s.repo.DeleteOne(ctx, in.FileID, in.OwnerID)
	if err != nil {
		log.Error("metadata_delete_failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if n == 0 {
		log.Warn("metadata_delete_matched_nothing")
		return ErrDeleteFailed
	}

	// The record is gone, so the request succeeds even if the object lingers.
	if err := s.store.Delete(context.WithoutCancel(ctx), rec.StoragePath); err != nil {
		log.Error("orphaned_object",
			zap.String("storage_path", rec.StoragePath),
			zap.Error(err),
		)
		s.metrics.Orphan(metrics.OrphanObject)
		span.AddEvent("orphaned_object")
	}

	log.Info("delete_completed", zap.String("storage_path", rec.StoragePath))
	return nil
}

func (s *fileService) List(ctx context.Context, ownerID string) (items []model.FileRecord, err error) {
	ctx, span := tracer.Start(ctx, "FileService.List",
		trace.WithAttributes(attribute.String("file.owner_id", ownerID)))
	defer func() { endSpan(span, err) }()

	if ownerID == "" {
		return nil, ErrMissingFields
	}
	items, err = s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		logger.For(ctx, s.log).Error("metadata_list_failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if items == nil {
		items = []model.FileRecord{}
	}
	return items, nil
}

// compensate deletes an object written by a flow that could not complete. Its
// outcome never changes the flow's response.
func (s *fileService) compensate(ctx context.Context, flow, storagePath string) {
	log := logger.For(ctx, s.log).With(zap.String("flow", flow), zap.String("storage_path", storagePath))
	if err := s.store.Delete(context.WithoutCancel(ctx), storagePath); err != nil {
		log.Error("compensation_failed", zap.Error(err))
		s.metrics.Compensation(flow, metrics.ResultFailed)
		s.metrics.Orphan(metrics.OrphanObject)
		return
	}
	log.Warn("compensation_succeeded")
	s.metrics.Compensation(flow, metrics.ResultSucceeded)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Classify(err).String())
	}
	span.End()
}

// maxEncodedLen bounds the raw fileData string before decoding. The decoder skips
// line breaks, so wrapped payloads are longer than their plain encoding; the
// decoded length is the real limit.
var maxEncodedLen = 2 * int64(base64.StdEncoding.EncodedLen(int(model.MaxFileSize)))

// decodeFileData accepts padded or unpadded standard base64, wrapped or not.
func decodeFileData(s string) ([]byte, error) {
	if int64(len(s)) > maxEncodedLen {
		return nil, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrInvalidFileData, err)
}

// pathSafe keeps a display name from adding path segments to the storage key.
func pathSafe(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
