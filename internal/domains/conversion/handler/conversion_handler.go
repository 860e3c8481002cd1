package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/internal/domains/conversion/service"
	"img2pdf-backend/internal/shared/response"
)

// ConversionHandler handles HTTP requests cho conversion lifecycle
type ConversionHandler struct {
	service service.ConversionService
}

func NewConversionHandler(svc service.ConversionService) *ConversionHandler {
	return &ConversionHandler{service: svc}
}

// Create handles POST /conversions
func (h *ConversionHandler) Create(c *gin.Context) {
	var req model.CreateConversionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	conv, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Conversion created successfully", conv)
}

// Update handles PATCH /conversions/:id
// Partial update: chỉ apply field có mặt trong body
func (h *ConversionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	conv, err := h.service.UpdateSettings(c.Request.Context(), id, &req)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Conversion updated successfully", conv)
}

// Process handles POST /conversions/:id/process
func (h *ConversionHandler) Process(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	conv, err := h.service.Process(c.Request.Context(), id)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Conversion processed successfully", conv)
}

// Get handles GET /conversions/:id
func (h *ConversionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	conv, err := h.service.GetConversion(c.Request.Context(), id)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Conversion retrieved successfully", conv)
}

// GetPDF handles GET /conversions/:id/pdf
// Trả raw bytes với content-type application/pdf; 404 khi chưa có gì để trả
func (h *ConversionHandler) GetPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	data, found, err := h.service.GetPDF(c.Request.Context(), id)
	if err != nil {
		handleConversionError(c, err)
		return
	}

	if !found {
		response.NotFound(c, "PDF is not available for this conversion")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", data)
}

// parseID parse path param thành UUID, tự trả 400 nếu không hợp lệ
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidID,
			fmt.Sprintf("invalid %s: must be a UUID", param))
		return uuid.Nil, false
	}
	return id, true
}

// handleConversionError map lỗi domain/validation sang HTTP response
func handleConversionError(c *gin.Context, err error) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", vErrs)
		return
	}

	statusCode, message, code := model.GetErrorResponse(err)
	response.ErrorResponse(c, statusCode, code, message)
}
