package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// ENUMS
// =====================================================

// PageSize là khổ giấy của file PDF đầu ra
type PageSize string

const (
	PageSizeA4     PageSize = "a4"
	PageSizeLetter PageSize = "letter"
	PageSizeLegal  PageSize = "legal"
	PageSizeA3     PageSize = "a3"
	PageSizeA5     PageSize = "a5"
)

// Orientation là chiều của trang PDF
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Status là trạng thái vòng đời của một conversion
// pending → processing → completed | failed
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ImageFormat là định dạng của ảnh upload
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatWebP ImageFormat = "webp"
	FormatGIF  ImageFormat = "gif"
)

var (
	PageSizes    = []interface{}{string(PageSizeA4), string(PageSizeLetter), string(PageSizeLegal), string(PageSizeA3), string(PageSizeA5)}
	Orientations = []interface{}{string(OrientationPortrait), string(OrientationLandscape)}
	ImageFormats = []interface{}{string(FormatJPEG), string(FormatPNG), string(FormatWebP), string(FormatGIF)}
)

// pageDimensions: width x height in PDF points (1pt = 1/72 inch), portrait
var pageDimensions = map[PageSize][2]float64{
	PageSizeA4:     {595.28, 841.89},
	PageSizeLetter: {612.00, 792.00},
	PageSizeLegal:  {612.00, 1008.00},
	PageSizeA3:     {841.89, 1190.55},
	PageSizeA5:     {419.53, 595.28},
}

// Dimensions trả về (width, height) theo points, đã xoay theo orientation
func (p PageSize) Dimensions(o Orientation) (float64, float64) {
	dim, ok := pageDimensions[p]
	if !ok {
		dim = pageDimensions[PageSizeA4]
	}
	if o == OrientationLandscape {
		return dim[1], dim[0]
	}
	return dim[0], dim[1]
}

// IsTerminal: completed và failed là trạng thái cuối
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// =====================================================
// ENTITIES
// =====================================================

// Conversion là một phiên ghép ảnh thành PDF
type Conversion struct {
	ID           uuid.UUID   `json:"id"`
	PageSize     PageSize    `json:"page_size"`
	Orientation  Orientation `json:"orientation"`
	Status       Status      `json:"status"`
	PDFFilePath  *string     `json:"pdf_file_path,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// Image là một ảnh đã upload, thuộc về đúng một Conversion
// OrderIndex là vị trí (zero-based) của ảnh trong chuỗi trang PDF
type Image struct {
	ID           uuid.UUID   `json:"id"`
	ConversionID uuid.UUID   `json:"conversion_id"`
	OriginalName string      `json:"original_name"`
	FilePath     string      `json:"file_path"`
	FileSize     int64       `json:"file_size"`
	Format       ImageFormat `json:"format"`
	OrderIndex   int         `json:"order_index"`
	UploadedAt   time.Time   `json:"uploaded_at"`
}

// ConversionWithImages là read model cho GET /conversions/:id
// Images luôn được sắp xếp tăng dần theo order_index
type ConversionWithImages struct {
	Conversion
	Images []*Image `json:"images"`
}
