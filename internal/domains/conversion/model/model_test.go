package model

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageSize_Dimensions(t *testing.T) {
	w, h := PageSizeA4.Dimensions(OrientationPortrait)
	assert.Equal(t, 595.28, w)
	assert.Equal(t, 841.89, h)

	// Landscape swap chiều
	w, h = PageSizeA4.Dimensions(OrientationLandscape)
	assert.Equal(t, 841.89, w)
	assert.Equal(t, 595.28, h)

	// Size lạ fallback về a4 thay vì panic
	w, h = PageSize("billboard").Dimensions(OrientationPortrait)
	assert.Equal(t, 595.28, w)
	assert.Equal(t, 841.89, h)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestGetErrorResponse(t *testing.T) {
	status, _, code := GetErrorResponse(ErrConversionNotFound)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrCodeConversionNotFound, code)

	// Wrapped sentinel vẫn map đúng
	status, _, code = GetErrorResponse(fmt.Errorf("reorder: %w", ErrDuplicateIndex))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeDuplicateIndex, code)

	status, msg, code := GetErrorResponse(&AlreadyFailedError{Reason: "No images found for conversion"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, ErrCodeAlreadyFailed, code)
	assert.Contains(t, msg, "No images found for conversion")

	status, _, code = GetErrorResponse(&MaterializationError{Err: errors.New("disk full")})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrCodeMaterialization, code)

	status, _, code = GetErrorResponse(errors.New("something unexpected"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "SYS001", code)
}

func TestUploadImageRequest_Validate(t *testing.T) {
	valid := UploadImageRequest{
		OriginalName: "scan.png",
		FilePath:     "conversions/x/images/scan.png",
		FileSize:     1024,
		Format:       "png",
		OrderIndex:   0,
	}
	assert.NoError(t, valid.Validate())

	badFormat := valid
	badFormat.Format = "tiff"
	assert.Error(t, badFormat.Validate())

	negIndex := valid
	negIndex.OrderIndex = -1
	assert.Error(t, negIndex.Validate())
}
