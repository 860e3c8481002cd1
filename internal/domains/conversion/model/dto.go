package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateConversionRequest - POST /conversions
type CreateConversionRequest struct {
	PageSize    string `json:"page_size"`
	Orientation string `json:"orientation"`
}

func (r CreateConversionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageSize,
			validation.Required.Error("page_size is required"),
			validation.In(PageSizes...).Error("page_size must be one of: a4, letter, legal, a3, a5"),
		),
		validation.Field(&r.Orientation,
			validation.Required.Error("orientation is required"),
			validation.In(Orientations...).Error("orientation must be portrait or landscape"),
		),
	)
}

// UpdateConversionRequest - PATCH /conversions/:id
// Partial update: chỉ field nào có mặt mới được apply
type UpdateConversionRequest struct {
	PageSize    *string `json:"page_size,omitempty"`
	Orientation *string `json:"orientation,omitempty"`
}

func (r UpdateConversionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageSize,
			validation.When(r.PageSize != nil,
				validation.In(PageSizes...).Error("page_size must be one of: a4, letter, legal, a3, a5"),
			),
		),
		validation.Field(&r.Orientation,
			validation.When(r.Orientation != nil,
				validation.In(Orientations...).Error("orientation must be portrait or landscape"),
			),
		),
	)
}

// IsEmpty: request không có field nào → no-op, trả về row hiện tại
func (r UpdateConversionRequest) IsEmpty() bool {
	return r.PageSize == nil && r.Orientation == nil
}

// UploadImageRequest là metadata của một ảnh upload
// Handler build struct này từ multipart form: file đã được đẩy lên storage
// trước, FilePath là object key
type UploadImageRequest struct {
	OriginalName string `json:"original_name"`
	FilePath     string `json:"file_path"`
	FileSize     int64  `json:"file_size"`
	Format       string `json:"format"`
	OrderIndex   int    `json:"order_index"`
}

func (r UploadImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OriginalName,
			validation.Required.Error("original_name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.FilePath,
			validation.Required.Error("file_path is required"),
		),
		validation.Field(&r.FileSize,
			validation.Required.Error("file_size is required"),
			validation.Min(int64(1)).Error("file_size must be positive"),
		),
		validation.Field(&r.Format,
			validation.Required.Error("format is required"),
			validation.In(ImageFormats...).Error("format must be one of: jpeg, png, webp, gif"),
		),
		validation.Field(&r.OrderIndex,
			validation.Min(0).Error("order_index must be non-negative"),
		),
	)
}

// ImageOrder là một entry trong reorder batch
type ImageOrder struct {
	ImageID    string `json:"image_id"`
	OrderIndex int    `json:"order_index"`
}

func (o ImageOrder) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ImageID, validation.Required.Error("image_id is required")),
		validation.Field(&o.OrderIndex, validation.Min(0).Error("order_index must be non-negative")),
	)
}

// ReorderImagesRequest - PUT /conversions/:id/images/order
// Empty batch là no-op hợp lệ: trả về thứ tự hiện tại
type ReorderImagesRequest struct {
	ImageOrders []ImageOrder `json:"image_orders"`
}

func (r ReorderImagesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ImageOrders, validation.NotNil.Error("image_orders is required")),
	)
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// HealthResponse - GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
