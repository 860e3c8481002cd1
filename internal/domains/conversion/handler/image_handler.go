package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/internal/domains/conversion/service"
	"img2pdf-backend/internal/shared/response"
	"img2pdf-backend/pkg/logger"
)

// ImageHandler handles HTTP requests cho ảnh của một conversion
type ImageHandler struct {
	service       service.ImageService
	storage       service.FileStorage
	maxUploadSize int64 // bytes
}

func NewImageHandler(svc service.ImageService, storage service.FileStorage, maxUploadMB int64) *ImageHandler {
	return &ImageHandler{
		service:       svc,
		storage:       storage,
		maxUploadSize: maxUploadMB << 20,
	}
}

// Upload handles POST /conversions/:id/images
//
// Hai content type được chấp nhận:
//   - multipart/form-data: field "file" + "order_index" — bytes được đẩy
//     lên storage trước rồi mới insert record
//   - application/json: metadata của file đã nằm sẵn trên storage
//     (original_name, file_path, file_size, format, order_index)
func (h *ImageHandler) Upload(c *gin.Context) {
	conversionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req model.UploadImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request payload")
			return
		}

		img, err := h.service.Upload(c.Request.Context(), conversionID, &req)
		if err != nil {
			handleConversionError(c, err)
			return
		}

		response.Success(c, http.StatusCreated, "Image uploaded successfully", img)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	if fileHeader.Size > h.maxUploadSize {
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxUploadSize))
		return
	}

	orderIndex, err := strconv.Atoi(c.DefaultPostForm("order_index", "0"))
	if err != nil || orderIndex < 0 {
		response.BadRequest(c, "order_index must be a non-negative integer")
		return
	}

	format, ok2 := formatFromFilename(fileHeader.Filename)
	if !ok2 {
		response.BadRequest(c, "unsupported image format: must be jpeg, png, webp or gif")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		response.InternalServerError(c, "failed to read uploaded file")
		return
	}

	key := fmt.Sprintf("conversions/%s/images/%s.%s", conversionID, uuid.New(), format)
	if err := h.storage.Upload(c.Request.Context(), key, data, fmt.Sprintf("image/%s", format)); err != nil {
		logger.Error("Failed to store uploaded image", err)
		response.InternalServerError(c, "failed to store uploaded file")
		return
	}

	req := &model.UploadImageRequest{
		OriginalName: fileHeader.Filename,
		FilePath:     key,
		FileSize:     int64(len(data)),
		Format:       string(format),
		OrderIndex:   orderIndex,
	}

	img, err := h.service.Upload(c.Request.Context(), conversionID, req)
	if err != nil {
		// Record không tạo được → dọn object vừa đẩy lên, best-effort
		if rmErr := h.storage.Remove(c.Request.Context(), key); rmErr != nil {
			logger.Error("Failed to clean up orphaned upload", rmErr)
		}
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Image uploaded successfully", img)
}

// Reorder handles PUT /conversions/:id/images/order
// Empty batch là no-op hợp lệ: trả về thứ tự hiện tại
func (h *ImageHandler) Reorder(c *gin.Context) {
	conversionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.ReorderImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	if err := req.Validate(); err != nil {
		handleConversionError(c, err)
		return
	}

	images, err := h.service.Reorder(c.Request.Context(), conversionID, req.ImageOrders)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Images reordered successfully", images)
}

// List handles GET /conversions/:id/images
func (h *ImageHandler) List(c *gin.Context) {
	conversionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	images, err := h.service.List(c.Request.Context(), conversionID)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Images retrieved successfully", images)
}

// Delete handles DELETE /images/:id
// deleted=false (không phải lỗi) khi ảnh không tồn tại hoặc conversion
// không còn pending
func (h *ImageHandler) Delete(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// ID không phải UUID → chắc chắn không có ảnh nào như vậy
		response.Success(c, http.StatusOK, "Image not deleted", gin.H{"deleted": false})
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), imageID)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	message := "Image deleted successfully"
	if !deleted {
		message = "Image not deleted"
	}
	response.Success(c, http.StatusOK, message, gin.H{"deleted": deleted})
}

// formatFromFilename map extension → ImageFormat
func formatFromFilename(name string) (model.ImageFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jpg", "jpeg":
		return model.FormatJPEG, true
	case "png":
		return model.FormatPNG, true
	case "webp":
		return model.FormatWebP, true
	case "gif":
		return model.FormatGIF, true
	default:
		return "", false
	}
}
