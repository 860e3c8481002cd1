package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2pdf-backend/internal/domains/conversion/model"
)

func TestImageService_Upload(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)

	img := uploadTestImage(t, env, conv.ID, "photo.jpg", 0)

	assert.NotEqual(t, uuid.Nil, img.ID)
	assert.Equal(t, conv.ID, img.ConversionID)
	assert.Equal(t, "photo.jpg", img.OriginalName)
	assert.Equal(t, model.FormatJPEG, img.Format)
	assert.Equal(t, 0, img.OrderIndex)
	assert.False(t, img.UploadedAt.IsZero())
}

func TestImageService_Upload_ConversionNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.images.Upload(context.Background(), uuid.New(), &model.UploadImageRequest{
		OriginalName: "photo.jpg",
		FilePath:     "x/photo.jpg",
		FileSize:     100,
		Format:       "jpeg",
	})
	assert.ErrorIs(t, err, model.ErrConversionNotFound)
}

func TestImageService_Upload_NotPending(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	uploadTestImage(t, env, conv.ID, "a.jpg", 0)

	_, err := env.conversions.Process(context.Background(), conv.ID)
	require.NoError(t, err)

	_, err = env.images.Upload(context.Background(), conv.ID, &model.UploadImageRequest{
		OriginalName: "late.jpg",
		FilePath:     "x/late.jpg",
		FileSize:     100,
		Format:       "jpeg",
		OrderIndex:   1,
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestImageService_Upload_InvalidMetadata(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)

	cases := []model.UploadImageRequest{
		{OriginalName: "", FilePath: "x", FileSize: 100, Format: "jpeg"},
		{OriginalName: "a.jpg", FilePath: "", FileSize: 100, Format: "jpeg"},
		{OriginalName: "a.jpg", FilePath: "x", FileSize: 0, Format: "jpeg"},
		{OriginalName: "a.tiff", FilePath: "x", FileSize: 100, Format: "tiff"},
	}

	for _, req := range cases {
		_, err := env.images.Upload(context.Background(), conv.ID, &req)
		assert.Error(t, err, "request %+v should be rejected", req)
	}
}

func reorderOf(images []*model.Image) []string {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.OriginalName
	}
	return names
}

func TestImageService_Reorder_Swap(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	img1 := uploadTestImage(t, env, conv.ID, "first.jpg", 0)
	img2 := uploadTestImage(t, env, conv.ID, "second.jpg", 1)

	result, err := env.images.Reorder(context.Background(), conv.ID, []model.ImageOrder{
		{ImageID: img2.ID.String(), OrderIndex: 0},
		{ImageID: img1.ID.String(), OrderIndex: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"second.jpg", "first.jpg"}, reorderOf(result))
	assert.Equal(t, 0, result[0].OrderIndex)
	assert.Equal(t, 1, result[1].OrderIndex)

	// Round-trip: GetConversion thấy thứ tự mới
	got, err := env.conversions.GetConversion(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"second.jpg", "first.jpg"}, reorderOf(got.Images))
}

func TestImageService_Reorder_IdentityIsStable(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	img1 := uploadTestImage(t, env, conv.ID, "a.jpg", 0)
	img2 := uploadTestImage(t, env, conv.ID, "b.jpg", 1)

	result, err := env.images.Reorder(context.Background(), conv.ID, []model.ImageOrder{
		{ImageID: img1.ID.String(), OrderIndex: 0},
		{ImageID: img2.ID.String(), OrderIndex: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, reorderOf(result))
}

func TestImageService_Reorder_EmptyBatchIsNoop(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	uploadTestImage(t, env, conv.ID, "a.jpg", 0)
	uploadTestImage(t, env, conv.ID, "b.jpg", 1)

	result, err := env.images.Reorder(context.Background(), conv.ID, []model.ImageOrder{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, reorderOf(result))
}

func TestImageService_Reorder_DuplicateIndexRejected(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	img1 := uploadTestImage(t, env, conv.ID, "a.jpg", 0)
	img2 := uploadTestImage(t, env, conv.ID, "b.jpg", 1)

	_, err := env.images.Reorder(context.Background(), conv.ID, []model.ImageOrder{
		{ImageID: img1.ID.String(), OrderIndex: 1},
		{ImageID: img2.ID.String(), OrderIndex: 1},
	})
	assert.ErrorIs(t, err, model.ErrDuplicateIndex)

	// Index đã lưu không bị đụng tới
	got, getErr := env.conversions.GetConversion(context.Background(), conv.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, got.Images[0].OrderIndex)
	assert.Equal(t, 1, got.Images[1].OrderIndex)
}

func TestImageService_Reorder_ForeignImageRejected(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	other := createPendingConversion(t, env)
	uploadTestImage(t, env, conv.ID, "mine.jpg", 0)
	foreign := uploadTestImage(t, env, other.ID, "theirs.jpg", 0)

	_, err := env.images.Reorder(context.Background(), conv.ID, []model.ImageOrder{
		{ImageID: foreign.ID.String(), OrderIndex: 1},
	})
	assert.ErrorIs(t, err, model.ErrInvalidReference)
}

func TestImageService_Reorder_NotPending(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	img := uploadTestImage(t, env, conv.ID, "a.jpg", 0)

	_, err := env.conversions.Process(context.Background(), conv.ID)
	require.NoError(t, err)

	_, err = env.images.Reorder(context.Background(), conv.ID, []model.ImageOrder{
		{ImageID: img.ID.String(), OrderIndex: 0},
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestImageService_Delete_Compaction(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	uploadTestImage(t, env, conv.ID, "img0.jpg", 0)
	img1 := uploadTestImage(t, env, conv.ID, "img1.jpg", 1)
	uploadTestImage(t, env, conv.ID, "img2.jpg", 2)
	uploadTestImage(t, env, conv.ID, "img3.jpg", 3)

	deleted, err := env.images.Delete(context.Background(), img1.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := env.conversions.GetConversion(context.Background(), conv.ID)
	require.NoError(t, err)

	// [0,1,2,3] xóa index 1 → còn [0,1,2], thứ tự tương đối giữ nguyên
	require.Len(t, got.Images, 3)
	assert.Equal(t, []string{"img0.jpg", "img2.jpg", "img3.jpg"}, reorderOf(got.Images))
	for i, img := range got.Images {
		assert.Equal(t, i, img.OrderIndex)
	}
}

func TestImageService_Delete_MissingReturnsFalse(t *testing.T) {
	env := newTestEnv()

	deleted, err := env.images.Delete(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestImageService_Delete_NotPendingReturnsFalse(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	img := uploadTestImage(t, env, conv.ID, "a.jpg", 0)

	_, err := env.conversions.Process(context.Background(), conv.ID)
	require.NoError(t, err)

	deleted, err := env.images.Delete(context.Background(), img.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Row vẫn còn
	got, err := env.conversions.GetConversion(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
}

func TestImageService_Delete_StorageFailureIsSwallowed(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	img := uploadTestImage(t, env, conv.ID, "a.jpg", 0)

	env.storage.removeErr = errors.New("object store down")

	// File removal là best-effort: row vẫn bị xóa, không error
	deleted, err := env.images.Delete(context.Background(), img.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := env.conversions.GetConversion(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestImageService_List(t *testing.T) {
	env := newTestEnv()
	conv := createPendingConversion(t, env)
	uploadTestImage(t, env, conv.ID, "b.jpg", 1)
	uploadTestImage(t, env, conv.ID, "a.jpg", 0)

	images, err := env.images.List(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, reorderOf(images))

	_, err = env.images.List(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrConversionNotFound)
}

// End-to-end theo flow người dùng: create → upload x2 → reorder → process
func TestConversionFlow_EndToEnd(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversions.Create(ctx, &model.CreateConversionRequest{
		PageSize:    "a4",
		Orientation: "portrait",
	})
	require.NoError(t, err)

	img1 := uploadTestImage(t, env, conv.ID, "img1.jpg", 0)
	img2 := uploadTestImage(t, env, conv.ID, "img2.jpg", 1)

	got, err := env.conversions.GetConversion(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"img1.jpg", "img2.jpg"}, reorderOf(got.Images))

	_, err = env.images.Reorder(ctx, conv.ID, []model.ImageOrder{
		{ImageID: img2.ID.String(), OrderIndex: 0},
		{ImageID: img1.ID.String(), OrderIndex: 1},
	})
	require.NoError(t, err)

	got, err = env.conversions.GetConversion(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"img2.jpg", "img1.jpg"}, reorderOf(got.Images))

	_, err = env.conversions.Process(ctx, conv.ID)
	require.NoError(t, err)

	got, err = env.conversions.GetConversion(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.NotNil(t, got.PDFFilePath)
}
