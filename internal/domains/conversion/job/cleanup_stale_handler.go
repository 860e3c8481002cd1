package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"img2pdf-backend/internal/config"
	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/internal/domains/conversion/repository"
	"img2pdf-backend/internal/domains/conversion/service"
	"img2pdf-backend/internal/shared/utils"
	"img2pdf-backend/pkg/logger"
)

// ================================================
// CLEANUP STALE CONVERSIONS JOB HANDLER
// ================================================
// Pending conversions bị bỏ rơi (user upload rồi không process) giữ
// object trong storage vô thời hạn — job này dọn row + files theo lịch

type CleanupStaleConversionsHandler struct {
	convRepo  repository.ConversionRepository
	imageRepo repository.ImageRepository
	storage   service.FileStorage
	jobConfig config.JobConfig
}

func NewCleanupStaleConversionsHandler(
	convRepo repository.ConversionRepository,
	imageRepo repository.ImageRepository,
	storage service.FileStorage,
	jobConfig config.JobConfig,
) *CleanupStaleConversionsHandler {
	return &CleanupStaleConversionsHandler{
		convRepo:  convRepo,
		imageRepo: imageRepo,
		storage:   storage,
		jobConfig: jobConfig,
	}
}

// Payload optional: cho phép override retention, mặc định theo config
type CleanupStaleConversionsPayload struct {
	RetentionHours int `json:"retention_hours"`
}

func (h *CleanupStaleConversionsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CleanupStaleConversionsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error("Failed to unmarshal cleanup payload, using config default", err)
	}

	hours := payload.RetentionHours
	if hours <= 0 {
		hours = h.jobConfig.CleanupRetentionHours
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	logger.Info("Starting CleanupStaleConversions job", map[string]interface{}{
		"retention_hours": hours,
		"cutoff":          cutoff.Format(time.RFC3339),
	})

	stale, err := h.convRepo.ListStale(ctx, model.StatusPending, cutoff)
	if err != nil {
		logger.Error("Failed to list stale conversions", err)
		return err
	}

	removed := 0
	for _, conv := range stale {
		images, err := h.imageRepo.GetByConversionID(ctx, conv.ID)
		if err != nil {
			logger.Error("Failed to load images for stale conversion", err)
			continue
		}

		// File removal best-effort: object mất rồi thì row vẫn phải xóa
		for _, img := range images {
			if err := h.storage.Remove(ctx, img.FilePath); err != nil {
				logger.Error("Failed to remove stale image file", err)
			}
		}

		if err := h.convRepo.Delete(ctx, conv.ID); err != nil {
			logger.Error("Failed to delete stale conversion", err)
			continue
		}
		removed++
	}

	logger.Info("CleanupStaleConversions job finished", map[string]interface{}{
		"scanned": len(stale),
		"removed": removed,
	})

	return nil
}
