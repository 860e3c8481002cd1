package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/internal/domains/conversion/repository"
	"img2pdf-backend/pkg/cache"
	"img2pdf-backend/pkg/database"
	"img2pdf-backend/pkg/logger"
)

type imageService struct {
	convRepo  repository.ConversionRepository
	imageRepo repository.ImageRepository
	storage   FileStorage
	tx        database.TxManager
	cache     cache.Cache
}

func NewImageService(
	convRepo repository.ConversionRepository,
	imageRepo repository.ImageRepository,
	storage FileStorage,
	tx database.TxManager,
	cacheClient cache.Cache,
) ImageService {
	return &imageService{
		convRepo:  convRepo,
		imageRepo: imageRepo,
		storage:   storage,
		tx:        tx,
		cache:     cacheClient,
	}
}

// Upload thêm một ảnh vào conversion đang pending
// Uniqueness của order_index KHÔNG được enforce ở đây — caller chịu
// trách nhiệm đưa index hợp lý, reorder/delete sẽ giữ dãy liên tục
func (s *imageService) Upload(ctx context.Context, conversionID uuid.UUID, req *model.UploadImageRequest) (*model.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conv, err := s.convRepo.GetByID(ctx, conversionID)
	if err != nil {
		return nil, err
	}

	if conv.Status != model.StatusPending {
		return nil, model.ErrInvalidState
	}

	img := &model.Image{
		ConversionID: conversionID,
		OriginalName: req.OriginalName,
		FilePath:     req.FilePath,
		FileSize:     req.FileSize,
		Format:       model.ImageFormat(req.Format),
		OrderIndex:   req.OrderIndex,
	}

	if err := s.imageRepo.Create(ctx, img); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, conversionID)

	logger.Info("Image uploaded", map[string]interface{}{
		"image_id":      img.ID.String(),
		"conversion_id": conversionID.String(),
		"original_name": img.OriginalName,
		"order_index":   img.OrderIndex,
	})

	return img, nil
}

// Reorder áp dụng batch index mới rồi trả về toàn bộ ảnh theo thứ tự mới
// Duplicate check chỉ xét TRONG batch; ảnh không được nhắc tới giữ nguyên
// index — đây là hành vi có chủ đích, không check chéo với index cũ
func (s *imageService) Reorder(ctx context.Context, conversionID uuid.UUID, orders []model.ImageOrder) ([]*model.Image, error) {
	seen := make(map[int]bool, len(orders))
	for _, o := range orders {
		if seen[o.OrderIndex] {
			return nil, fmt.Errorf("%w: order_index %d appears twice", model.ErrDuplicateIndex, o.OrderIndex)
		}
		seen[o.OrderIndex] = true
	}

	var result []*model.Image

	err := s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		conv, err := s.convRepo.GetByIDForUpdate(ctx, tx, conversionID)
		if err != nil {
			return err
		}

		if conv.Status != model.StatusPending {
			return model.ErrInvalidState
		}

		images, err := s.imageRepo.GetByConversionIDTx(ctx, tx, conversionID)
		if err != nil {
			return err
		}

		owned := make(map[uuid.UUID]bool, len(images))
		for _, img := range images {
			owned[img.ID] = true
		}

		for _, o := range orders {
			imageID, err := uuid.Parse(o.ImageID)
			if err != nil || !owned[imageID] {
				return fmt.Errorf("%w: image %s", model.ErrInvalidReference, o.ImageID)
			}

			if err := s.imageRepo.UpdateOrderIndexTx(ctx, tx, imageID, o.OrderIndex); err != nil {
				return err
			}
		}

		// Đọc lại trong cùng tx để trả về thứ tự sau khi apply
		result, err = s.imageRepo.GetByConversionIDTx(ctx, tx, conversionID)
		return err
	})

	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, conversionID)
	return result, nil
}

// List trả về ảnh của một conversion theo order_index tăng dần
func (s *imageService) List(ctx context.Context, conversionID uuid.UUID) ([]*model.Image, error) {
	if _, err := s.convRepo.GetByID(ctx, conversionID); err != nil {
		return nil, err
	}
	return s.imageRepo.GetByConversionID(ctx, conversionID)
}

// Delete xóa một ảnh và dồn order_index của các ảnh phía sau xuống 1
// Trả về false (không error) khi ảnh không tồn tại hoặc conversion
// của nó không còn pending; error chỉ dành cho storage failure bất ngờ
func (s *imageService) Delete(ctx context.Context, imageID uuid.UUID) (bool, error) {
	var deleted *model.Image

	err := s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		img, err := s.imageRepo.GetByID(ctx, imageID)
		if err != nil {
			return err
		}

		conv, err := s.convRepo.GetByIDForUpdate(ctx, tx, img.ConversionID)
		if err != nil {
			return err
		}

		if conv.Status != model.StatusPending {
			return model.ErrInvalidState
		}

		if err := s.imageRepo.DeleteTx(ctx, tx, imageID); err != nil {
			return err
		}

		if err := s.imageRepo.ShiftIndexesAfterTx(ctx, tx, img.ConversionID, img.OrderIndex); err != nil {
			return err
		}

		deleted = img
		return nil
	})

	if err != nil {
		if errors.Is(err, model.ErrImageNotFound) ||
			errors.Is(err, model.ErrConversionNotFound) ||
			errors.Is(err, model.ErrInvalidState) {
			return false, nil
		}
		return false, err
	}

	// File removal là best-effort: object đã mất thì chỉ log, row đã xóa xong
	if err := s.storage.Remove(ctx, deleted.FilePath); err != nil {
		logger.Error("Failed to remove image file from storage", err)
	}

	s.invalidateCache(ctx, deleted.ConversionID)

	logger.Info("Image deleted", map[string]interface{}{
		"image_id":      imageID.String(),
		"conversion_id": deleted.ConversionID.String(),
		"order_index":   deleted.OrderIndex,
	})

	return true, nil
}

func (s *imageService) invalidateCache(ctx context.Context, conversionID uuid.UUID) {
	if err := s.cache.Delete(ctx, fmt.Sprintf(conversionCacheKeyFmt, conversionID)); err != nil {
		logger.Error("Failed to invalidate conversion cache", err)
	}
}
