// internal/service/upload/upload.go
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"leaddist-service/internal/domain/distribution"
	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/tabular"
	"leaddist-service/internal/service/validation"

	"go.uber.org/zap"
)

// Distributor assigns validated rows to agents.
type Distributor interface {
	Distribute(ctx context.Context, rows []record.FieldMap, uploadedBy int64) (*distribution.Plan, error)
}

type Config struct {
	Dir         string
	MaxFileSize int64
}

// UploadService runs an uploaded file through parse, validate and distribute.
type UploadService struct {
	cfg         Config
	validator   validation.Strategy
	distributor Distributor
	logger      *zap.Logger
}

func NewUploadService(cfg Config, validator validation.Strategy, distributor Distributor, logger *zap.Logger) *UploadService {
	return &UploadService{
		cfg:         cfg,
		validator:   validator,
		distributor: distributor,
		logger:      logger,
	}
}

// MaxFileSize is the largest accepted upload in bytes.
func (s *UploadService) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// Process spools src to a temporary file, parses and validates it, then
// distributes the rows. The temporary file never outlives the call.
func (s *UploadService) Process(ctx context.Context, filename string, src io.Reader, uploadedBy int64) (*distribution.Plan, error) {
	parser, err := tabular.ForFile(filename)
	if err != nil {
		return nil, err
	}

	tmp, err := s.createTempFile(filename)
	if err != nil {
		return nil, err
	}
	defer s.cleanupTempFile(tmp)

	if err := s.spool(tmp, src); err != nil {
		return nil, err
	}

	rows, err := parser.Parse(tmp)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(rows)
	if !result.Valid {
		s.logger.Info("upload rejected by validation",
			zap.String("file", filepath.Base(filename)),
			zap.Int("rows", len(rows)),
			zap.Int("errors", len(result.Errors)),
		)
		return nil, result.Err()
	}

	plan, err := s.distributor.Distribute(ctx, rows, uploadedBy)
	if err != nil {
		return nil, err
	}

	s.logger.Info("upload processed",
		zap.String("file", filepath.Base(filename)),
		zap.String("batch_id", plan.BatchID),
		zap.Int("rows", plan.TotalRecords),
	)
	return plan, nil
}

// ========== Helper Methods ==========

func (s *UploadService) createTempFile(filename string) (*os.File, error) {
	dir := filepath.Join(s.cfg.Dir, "lead_uploads")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "upload-*"+tabular.Extension(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return tmp, nil
}

func (s *UploadService) cleanupTempFile(f *os.File) {
	name := f.Name()
	if err := f.Close(); err != nil {
		s.logger.Warn("failed to close temp file", zap.String("path", name), zap.Error(err))
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove temp file", zap.String("path", name), zap.Error(err))
	}
}

// spool copies src into f, refusing anything over the size limit, and rewinds f.
func (s *UploadService) spool(f *os.File, src io.Reader) error {
	written, err := io.Copy(f, io.LimitReader(src, s.cfg.MaxFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	if written > s.cfg.MaxFileSize {
		return xerrors.ErrFileTooLarge
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind upload: %w", err)
	}
	return nil
}
