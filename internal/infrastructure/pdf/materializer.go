package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/internal/domains/conversion/service"
	"img2pdf-backend/pkg/logger"
)

// Materializer là renderer mô phỏng: validate từng ảnh nguồn rồi emit
// một PDF skeleton (mỗi ảnh một trang, MediaBox theo page settings)
// Render ảnh thật vào trang nằm ngoài scope của hệ thống này
type Materializer struct {
	storage service.FileStorage
}

func NewMaterializer(storage service.FileStorage) *Materializer {
	return &Materializer{storage: storage}
}

// Materialize render danh sách ảnh (đã sort theo order_index) thành PDF,
// upload lên storage và trả về object key
func (m *Materializer) Materialize(ctx context.Context, conv *model.Conversion, images []*model.Image) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("no images to materialize")
	}

	for _, img := range images {
		data, err := m.storage.Download(ctx, img.FilePath)
		if err != nil {
			return "", fmt.Errorf("failed to read image %s: %w", img.OriginalName, err)
		}

		// imaging không decode được webp; với các format còn lại decode
		// để chắc chắn bytes là ảnh hợp lệ trước khi ghép
		if img.Format == model.FormatWebP {
			continue
		}

		decoded, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("image %s is not a valid %s file: %w", img.OriginalName, img.Format, err)
		}

		bounds := decoded.Bounds()
		logger.Info("Image validated for materialization", map[string]interface{}{
			"image_id": img.ID.String(),
			"width":    bounds.Dx(),
			"height":   bounds.Dy(),
		})
	}

	width, height := conv.PageSize.Dimensions(conv.Orientation)
	doc := buildDocument(width, height, len(images))

	key := fmt.Sprintf("conversions/%s/output.pdf", conv.ID)
	if err := m.storage.Upload(ctx, key, doc, "application/pdf"); err != nil {
		return "", fmt.Errorf("failed to store generated pdf: %w", err)
	}

	return key, nil
}

// buildDocument tạo một PDF tối thiểu nhưng hợp lệ: catalog, page tree,
// một page rỗng cho mỗi ảnh, xref table với offset chính xác
func buildDocument(pageWidth, pageHeight float64, pageCount int) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, pageCount+3)

	buf.WriteString("%PDF-1.4\n")

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	// Obj 1: catalog, Obj 2: page tree
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := ""
	for i := 0; i < pageCount; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pageCount))

	// Obj 3..n+2: một page rỗng cho mỗi ảnh
	for i := 0; i < pageCount; i++ {
		writeObj(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << >> >>\nendobj\n",
			i+3, pageWidth, pageHeight,
		))
	}

	xrefStart := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}

	buf.WriteString(fmt.Sprintf(
		"trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefStart,
	))

	return buf.Bytes()
}
