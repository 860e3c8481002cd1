package model

import (
	"errors"
	"fmt"
	"net/http"
)

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeConversionNotFound = "CNV001"
	ErrCodeImageNotFound      = "CNV002"
	ErrCodeInvalidState       = "CNV003"
	ErrCodeInvalidReference   = "CNV004"
	ErrCodeDuplicateIndex     = "CNV005"
	ErrCodeAlreadyFailed      = "CNV006"
	ErrCodeNoImages           = "CNV007"
	ErrCodeMaterialization    = "CNV008"
	ErrCodeInvalidID          = "CNV009"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrConversionNotFound = errors.New("conversion not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrInvalidState       = errors.New("conversion is not editable in its current status")
	ErrInvalidReference   = errors.New("image does not belong to this conversion")
	ErrDuplicateIndex     = errors.New("duplicate order_index in reorder request")
	ErrNoImages           = errors.New("No images found for conversion")
)

// AlreadyFailedError được trả về khi gọi process trên conversion đã failed
// Reason là error_message đã lưu trong DB
type AlreadyFailedError struct {
	Reason string
}

func (e *AlreadyFailedError) Error() string {
	if e.Reason == "" {
		return "conversion already failed"
	}
	return fmt.Sprintf("conversion already failed: %s", e.Reason)
}

// MaterializationError bọc lỗi từ PDF materializer
// Lỗi này vừa được ghi vào row (status=failed) vừa được re-raise cho caller
type MaterializationError struct {
	Err error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("pdf materialization failed: %v", e.Err)
}

func (e *MaterializationError) Unwrap() error {
	return e.Err
}

var conversionErrorMap = map[error]struct {
	Status int
	Code   string
}{
	ErrConversionNotFound: {http.StatusNotFound, ErrCodeConversionNotFound},
	ErrImageNotFound:      {http.StatusNotFound, ErrCodeImageNotFound},
	ErrInvalidState:       {http.StatusConflict, ErrCodeInvalidState},
	ErrInvalidReference:   {http.StatusBadRequest, ErrCodeInvalidReference},
	ErrDuplicateIndex:     {http.StatusBadRequest, ErrCodeDuplicateIndex},
	ErrNoImages:           {http.StatusUnprocessableEntity, ErrCodeNoImages},
}

// GetErrorResponse map domain error → (HTTP status, message, code)
// Lỗi không nằm trong taxonomy → 500
func GetErrorResponse(err error) (int, string, string) {
	for sentinel, cfg := range conversionErrorMap {
		if errors.Is(err, sentinel) {
			return cfg.Status, sentinel.Error(), cfg.Code
		}
	}

	var alreadyFailed *AlreadyFailedError
	if errors.As(err, &alreadyFailed) {
		return http.StatusConflict, alreadyFailed.Error(), ErrCodeAlreadyFailed
	}

	var materialization *MaterializationError
	if errors.As(err, &materialization) {
		return http.StatusInternalServerError, materialization.Error(), ErrCodeMaterialization
	}

	return http.StatusInternalServerError, "internal server error", "SYS001"
}
