package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"img2pdf-backend/internal/domains/conversion/model"
)

type conversionRepository struct {
	pool *pgxpool.Pool
}

func NewConversionRepository(pool *pgxpool.Pool) ConversionRepository {
	return &conversionRepository{pool: pool}
}

const conversionColumns = `id, page_size, orientation, status, pdf_file_path, error_message, created_at, completed_at`

func scanConversion(row pgx.Row) (*model.Conversion, error) {
	conv := &model.Conversion{}
	err := row.Scan(
		&conv.ID,
		&conv.PageSize,
		&conv.Orientation,
		&conv.Status,
		&conv.PDFFilePath,
		&conv.ErrorMessage,
		&conv.CreatedAt,
		&conv.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrConversionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion: %w", err)
	}
	return conv, nil
}

// Create tạo mới một conversion record với status=pending
func (r *conversionRepository) Create(ctx context.Context, conv *model.Conversion) error {
	query := `
        INSERT INTO conversions (page_size, orientation, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		conv.PageSize,
		conv.Orientation,
		model.StatusPending,
	).Scan(&conv.ID, &conv.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create conversion: %w", err)
	}

	conv.Status = model.StatusPending
	return nil
}

func (r *conversionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Conversion, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversions WHERE id = $1`
	return scanConversion(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate khóa row cho tới khi tx kết thúc
func (r *conversionRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Conversion, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversions WHERE id = $1 FOR UPDATE`
	return scanConversion(tx.QueryRow(ctx, query, id))
}

func (r *conversionRepository) UpdateSettingsTx(ctx context.Context, tx pgx.Tx, conv *model.Conversion) error {
	query := `UPDATE conversions SET page_size = $1, orientation = $2 WHERE id = $3`

	if _, err := tx.Exec(ctx, query, conv.PageSize, conv.Orientation, conv.ID); err != nil {
		return fmt.Errorf("failed to update conversion settings: %w", err)
	}
	return nil
}

// MarkProcessingTx chuyển sang processing và xóa error_message cũ
func (r *conversionRepository) MarkProcessingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE conversions SET status = $1, error_message = NULL WHERE id = $2`

	if _, err := tx.Exec(ctx, query, model.StatusProcessing, id); err != nil {
		return fmt.Errorf("failed to mark conversion processing: %w", err)
	}
	return nil
}

func (r *conversionRepository) MarkCompleted(ctx context.Context, id uuid.UUID, pdfPath string, completedAt time.Time) (*model.Conversion, error) {
	query := `
        UPDATE conversions
        SET status = $1, pdf_file_path = $2, completed_at = $3, error_message = NULL
        WHERE id = $4
        RETURNING ` + conversionColumns

	return scanConversion(r.pool.QueryRow(ctx, query, model.StatusCompleted, pdfPath, completedAt, id))
}

func (r *conversionRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) (*model.Conversion, error) {
	query := `
        UPDATE conversions
        SET status = $1, error_message = $2
        WHERE id = $3
        RETURNING ` + conversionColumns

	return scanConversion(r.pool.QueryRow(ctx, query, model.StatusFailed, errorMessage, id))
}

func (r *conversionRepository) ListStale(ctx context.Context, status model.Status, cutoff time.Time) ([]*model.Conversion, error) {
	query := `
        SELECT ` + conversionColumns + `
        FROM conversions
        WHERE status = $1 AND created_at < $2
        ORDER BY created_at ASC
    `

	rows, err := r.pool.Query(ctx, query, status, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale conversions: %w", err)
	}
	defer rows.Close()

	var conversions []*model.Conversion
	for rows.Next() {
		conv, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, conv)
	}

	return conversions, rows.Err()
}

// Delete xóa conversion; images đi theo nhờ ON DELETE CASCADE
func (r *conversionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM conversions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete conversion: %w", err)
	}
	return nil
}
