package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"img2pdf-backend/internal/domains/conversion/model"
)

type imageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) ImageRepository {
	return &imageRepository{pool: pool}
}

const imageColumns = `id, conversion_id, original_name, file_path, file_size, format, order_index, uploaded_at`

func scanImage(row pgx.Row) (*model.Image, error) {
	img := &model.Image{}
	err := row.Scan(
		&img.ID,
		&img.ConversionID,
		&img.OriginalName,
		&img.FilePath,
		&img.FileSize,
		&img.Format,
		&img.OrderIndex,
		&img.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan image: %w", err)
	}
	return img, nil
}

func (r *imageRepository) Create(ctx context.Context, img *model.Image) error {
	query := `
        INSERT INTO images (conversion_id, original_name, file_path, file_size, format, order_index)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, uploaded_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		img.ConversionID,
		img.OriginalName,
		img.FilePath,
		img.FileSize,
		img.Format,
		img.OrderIndex,
	).Scan(&img.ID, &img.UploadedAt)

	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`
	return scanImage(r.pool.QueryRow(ctx, query, id))
}

func (r *imageRepository) GetByConversionID(ctx context.Context, conversionID uuid.UUID) ([]*model.Image, error) {
	rows, err := r.pool.Query(ctx, orderedImagesQuery, conversionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

func (r *imageRepository) GetByConversionIDTx(ctx context.Context, tx pgx.Tx, conversionID uuid.UUID) ([]*model.Image, error) {
	rows, err := tx.Query(ctx, orderedImagesQuery, conversionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

const orderedImagesQuery = `
    SELECT ` + imageColumns + `
    FROM images
    WHERE conversion_id = $1
    ORDER BY order_index ASC
`

func collectImages(rows pgx.Rows) ([]*model.Image, error) {
	images := []*model.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *imageRepository) UpdateOrderIndexTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, orderIndex int) error {
	query := `UPDATE images SET order_index = $1 WHERE id = $2`

	if _, err := tx.Exec(ctx, query, orderIndex, id); err != nil {
		return fmt.Errorf("failed to update image order: %w", err)
	}
	return nil
}

func (r *imageRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ShiftIndexesAfterTx dồn các index phía sau ảnh vừa xóa xuống 1 bậc
func (r *imageRepository) ShiftIndexesAfterTx(ctx context.Context, tx pgx.Tx, conversionID uuid.UUID, deletedIndex int) error {
	query := `
        UPDATE images
        SET order_index = order_index - 1
        WHERE conversion_id = $1 AND order_index > $2
    `

	if _, err := tx.Exec(ctx, query, conversionID, deletedIndex); err != nil {
		return fmt.Errorf("failed to shift image indexes: %w", err)
	}
	return nil
}
