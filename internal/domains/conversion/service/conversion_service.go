package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/internal/domains/conversion/repository"
	"img2pdf-backend/pkg/cache"
	"img2pdf-backend/pkg/database"
	"img2pdf-backend/pkg/logger"
)

const (
	conversionCacheKeyFmt = "conversion:%s"
	conversionCacheTTL    = 5 * time.Minute
)

type conversionService struct {
	convRepo     repository.ConversionRepository
	imageRepo    repository.ImageRepository
	storage      FileStorage
	materializer PDFMaterializer
	tx           database.TxManager
	cache        cache.Cache
}

func NewConversionService(
	convRepo repository.ConversionRepository,
	imageRepo repository.ImageRepository,
	storage FileStorage,
	materializer PDFMaterializer,
	tx database.TxManager,
	cacheClient cache.Cache,
) ConversionService {
	return &conversionService{
		convRepo:     convRepo,
		imageRepo:    imageRepo,
		storage:      storage,
		materializer: materializer,
		tx:           tx,
		cache:        cacheClient,
	}
}

// Create tạo conversion mới ở trạng thái pending
func (s *conversionService) Create(ctx context.Context, req *model.CreateConversionRequest) (*model.Conversion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conv := &model.Conversion{
		PageSize:    model.PageSize(req.PageSize),
		Orientation: model.Orientation(req.Orientation),
		Status:      model.StatusPending,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}

	logger.Info("Conversion created", map[string]interface{}{
		"conversion_id": conv.ID.String(),
		"page_size":     conv.PageSize,
		"orientation":   conv.Orientation,
	})

	return conv, nil
}

// UpdateSettings áp dụng partial update lên page_size/orientation
// Chỉ cho phép khi status = pending; row được khóa trong tx để
// status check và write không bị race
func (s *conversionService) UpdateSettings(ctx context.Context, id uuid.UUID, req *model.UpdateConversionRequest) (*model.Conversion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Conversion

	err := s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		conv, err := s.convRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if conv.Status != model.StatusPending {
			return model.ErrInvalidState
		}

		// Không có field nào → trả row hiện tại, không write
		if req.IsEmpty() {
			updated = conv
			return nil
		}

		if req.PageSize != nil {
			conv.PageSize = model.PageSize(*req.PageSize)
		}
		if req.Orientation != nil {
			conv.Orientation = model.Orientation(*req.Orientation)
		}

		if err := s.convRepo.UpdateSettingsTx(ctx, tx, conv); err != nil {
			return err
		}

		updated = conv
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return updated, nil
}

// Process chạy vòng đời pending → processing → completed/failed
//   - completed: idempotent no-op, trả về row hiện tại
//   - failed: refuse với AlreadyFailedError kèm error_message đã lưu
//   - không có ảnh: chuyển failed và propagate ErrNoImages
//   - materializer lỗi: ghi failed vào row TRƯỚC, rồi re-raise cho caller
func (s *conversionService) Process(ctx context.Context, id uuid.UUID) (*model.Conversion, error) {
	var conv *model.Conversion

	// Flip sang processing trong tx với row lock: chỉ đúng một caller
	// thắng được bước chuyển trạng thái
	err := s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.convRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		switch current.Status {
		case model.StatusCompleted:
			conv = current
			return nil
		case model.StatusFailed:
			reason := ""
			if current.ErrorMessage != nil {
				reason = *current.ErrorMessage
			}
			return &model.AlreadyFailedError{Reason: reason}
		}

		if err := s.convRepo.MarkProcessingTx(ctx, tx, id); err != nil {
			return err
		}

		current.Status = model.StatusProcessing
		current.ErrorMessage = nil
		conv = current
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Đã completed từ trước → không materialize lại
	if conv.Status == model.StatusCompleted {
		return conv, nil
	}

	s.invalidateCache(ctx, id)

	images, err := s.imageRepo.GetByConversionID(ctx, id)
	if err != nil {
		return nil, s.failProcessing(ctx, id, err)
	}

	if len(images) == 0 {
		if _, markErr := s.convRepo.MarkFailed(ctx, id, model.ErrNoImages.Error()); markErr != nil {
			logger.Error("Failed to record no-images failure", markErr)
		}
		s.invalidateCache(ctx, id)
		return nil, model.ErrNoImages
	}

	pdfPath, err := s.materializer.Materialize(ctx, conv, images)
	if err != nil {
		return nil, s.failProcessing(ctx, id, err)
	}

	completed, err := s.convRepo.MarkCompleted(ctx, id, pdfPath, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)

	logger.Info("Conversion completed", map[string]interface{}{
		"conversion_id": id.String(),
		"pdf_file_path": pdfPath,
		"image_count":   len(images),
	})

	return completed, nil
}

// failProcessing ghi failed + error message vào row rồi trả lỗi cho caller
// Write-back không được nuốt lỗi gốc kể cả khi chính nó thất bại
func (s *conversionService) failProcessing(ctx context.Context, id uuid.UUID, cause error) error {
	if _, markErr := s.convRepo.MarkFailed(ctx, id, cause.Error()); markErr != nil {
		logger.Error("Failed to record conversion failure", markErr)
	}
	s.invalidateCache(ctx, id)

	logger.Error("Conversion processing failed", cause)
	return &model.MaterializationError{Err: cause}
}

// GetConversion trả về conversion kèm ảnh sort theo order_index (read-through cache)
func (s *conversionService) GetConversion(ctx context.Context, id uuid.UUID) (*model.ConversionWithImages, error) {
	cacheKey := fmt.Sprintf(conversionCacheKeyFmt, id)

	var cached model.ConversionWithImages
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	conv, err := s.convRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.imageRepo.GetByConversionID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &model.ConversionWithImages{
		Conversion: *conv,
		Images:     images,
	}

	if err := s.cache.Set(ctx, cacheKey, result, conversionCacheTTL); err != nil {
		logger.Error("Failed to cache conversion", err)
	}

	return result, nil
}

// GetPDF trả về bytes của file PDF đã generate
// found=false cho mọi trường hợp "chưa có gì để trả": not found,
// chưa completed, chưa có path, file mất trên storage
func (s *conversionService) GetPDF(ctx context.Context, id uuid.UUID) ([]byte, bool, error) {
	conv, err := s.convRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrConversionNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if conv.Status != model.StatusCompleted || conv.PDFFilePath == nil {
		return nil, false, nil
	}

	data, err := s.storage.Download(ctx, *conv.PDFFilePath)
	if err != nil {
		logger.Error("Generated PDF missing on storage", err)
		return nil, false, nil
	}

	return data, true, nil
}

func (s *conversionService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, fmt.Sprintf(conversionCacheKeyFmt, id)); err != nil {
		logger.Error("Failed to invalidate conversion cache", err)
	}
}
