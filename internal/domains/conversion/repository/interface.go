package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"img2pdf-backend/internal/domains/conversion/model"
)

// ConversionRepository là data access cho bảng conversions
// Các method *Tx chạy trong transaction do service mở — dùng cho các
// mutation nhiều bước cần giữ status guard (check-then-write)
type ConversionRepository interface {
	Create(ctx context.Context, conv *model.Conversion) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Conversion, error)

	// GetByIDForUpdate: SELECT ... FOR UPDATE — khóa row trong tx
	// để status check và write tiếp theo không bị race
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Conversion, error)

	UpdateSettingsTx(ctx context.Context, tx pgx.Tx, conv *model.Conversion) error
	MarkProcessingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, pdfPath string, completedAt time.Time) (*model.Conversion, error)
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) (*model.Conversion, error)

	// ListStale: conversions ở một status, không được đụng tới từ trước cutoff
	// Dùng bởi cleanup worker
	ListStale(ctx context.Context, status model.Status, cutoff time.Time) ([]*model.Conversion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageRepository là data access cho bảng images
type ImageRepository interface {
	Create(ctx context.Context, img *model.Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Image, error)

	// GetByConversionID trả về ảnh của một conversion, ORDER BY order_index ASC
	GetByConversionID(ctx context.Context, conversionID uuid.UUID) ([]*model.Image, error)
	GetByConversionIDTx(ctx context.Context, tx pgx.Tx, conversionID uuid.UUID) ([]*model.Image, error)

	UpdateOrderIndexTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, orderIndex int) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// ShiftIndexesAfterTx: giảm 1 order_index của mọi ảnh cùng conversion
	// có index > deletedIndex — giữ dãy index liên tục sau khi xóa
	ShiftIndexesAfterTx(ctx context.Context, tx pgx.Tx, conversionID uuid.UUID, deletedIndex int) error
}
