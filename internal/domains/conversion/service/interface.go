package service

import (
	"context"

	"github.com/google/uuid"

	"img2pdf-backend/internal/domains/conversion/model"
)

// ConversionService là business logic cho vòng đời conversion
// (create → process → completed/failed) và các read-only query
type ConversionService interface {
	Create(ctx context.Context, req *model.CreateConversionRequest) (*model.Conversion, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, req *model.UpdateConversionRequest) (*model.Conversion, error)
	Process(ctx context.Context, id uuid.UUID) (*model.Conversion, error)
	GetConversion(ctx context.Context, id uuid.UUID) (*model.ConversionWithImages, error)

	// GetPDF trả về (data, found, err). found=false khi conversion không tồn tại,
	// chưa completed, chưa có path, hoặc file đã mất trên storage
	GetPDF(ctx context.Context, id uuid.UUID) ([]byte, bool, error)
}

// ImageService là business logic cho ảnh của một conversion:
// upload, reorder, delete kèm dồn index
type ImageService interface {
	Upload(ctx context.Context, conversionID uuid.UUID, req *model.UploadImageRequest) (*model.Image, error)
	Reorder(ctx context.Context, conversionID uuid.UUID, orders []model.ImageOrder) ([]*model.Image, error)
	List(ctx context.Context, conversionID uuid.UUID) ([]*model.Image, error)

	// Delete trả về false (không phải error) nếu ảnh không tồn tại
	// hoặc conversion của nó không còn pending
	Delete(ctx context.Context, imageID uuid.UUID) (bool, error)
}

// FileStorage là blob collaborator giữ bytes của ảnh upload và PDF đầu ra
// file_path / pdf_file_path trên record là object key trong storage
type FileStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// PDFMaterializer render danh sách ảnh (đã sort theo order_index) thành PDF
// và trả về object key của file kết quả
type PDFMaterializer interface {
	Materialize(ctx context.Context, conv *model.Conversion, images []*model.Image) (string, error)
}
