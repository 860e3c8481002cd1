package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"img2pdf-backend/internal/domains/conversion/model"
	"img2pdf-backend/pkg/database"
)

// In-memory fakes cho service tests: cùng interface với Postgres repos,
// transaction manager chạy fn với tx = nil (fakes không cần tx)

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// ---------------------------------------------------------------------

type fakeConversionRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Conversion
}

func newFakeConversionRepo() *fakeConversionRepo {
	return &fakeConversionRepo{store: map[uuid.UUID]*model.Conversion{}}
}

func (r *fakeConversionRepo) Create(ctx context.Context, conv *model.Conversion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv.ID = uuid.New()
	conv.Status = model.StatusPending
	conv.CreatedAt = time.Now().UTC()

	stored := *conv
	r.store[conv.ID] = &stored
	return nil
}

func (r *fakeConversionRepo) get(id uuid.UUID) (*model.Conversion, error) {
	stored, ok := r.store[id]
	if !ok {
		return nil, model.ErrConversionNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeConversionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakeConversionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakeConversionRepo) UpdateSettingsTx(ctx context.Context, tx pgx.Tx, conv *model.Conversion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[conv.ID]
	if !ok {
		return model.ErrConversionNotFound
	}
	stored.PageSize = conv.PageSize
	stored.Orientation = conv.Orientation
	return nil
}

func (r *fakeConversionRepo) MarkProcessingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok {
		return model.ErrConversionNotFound
	}
	stored.Status = model.StatusProcessing
	stored.ErrorMessage = nil
	return nil
}

func (r *fakeConversionRepo) MarkCompleted(ctx context.Context, id uuid.UUID, pdfPath string, completedAt time.Time) (*model.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok {
		return nil, model.ErrConversionNotFound
	}
	stored.Status = model.StatusCompleted
	stored.PDFFilePath = &pdfPath
	stored.CompletedAt = &completedAt
	stored.ErrorMessage = nil

	copied := *stored
	return &copied, nil
}

func (r *fakeConversionRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) (*model.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok {
		return nil, model.ErrConversionNotFound
	}
	stored.Status = model.StatusFailed
	stored.ErrorMessage = &errorMessage

	copied := *stored
	return &copied, nil
}

func (r *fakeConversionRepo) ListStale(ctx context.Context, status model.Status, cutoff time.Time) ([]*model.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Conversion
	for _, stored := range r.store {
		if stored.Status == status && stored.CreatedAt.Before(cutoff) {
			copied := *stored
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeConversionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

// ---------------------------------------------------------------------

type fakeImageRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Image
	seq   map[uuid.UUID]int // insertion order, để sort ổn định khi index trùng
	next  int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{
		store: map[uuid.UUID]*model.Image{},
		seq:   map[uuid.UUID]int{},
	}
}

func (r *fakeImageRepo) Create(ctx context.Context, img *model.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	img.ID = uuid.New()
	img.UploadedAt = time.Now().UTC()

	stored := *img
	r.store[img.ID] = &stored
	r.seq[img.ID] = r.next
	r.next++
	return nil
}

func (r *fakeImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok {
		return nil, model.ErrImageNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeImageRepo) ordered(conversionID uuid.UUID) []*model.Image {
	var images []*model.Image
	for _, stored := range r.store {
		if stored.ConversionID == conversionID {
			copied := *stored
			images = append(images, &copied)
		}
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].OrderIndex != images[j].OrderIndex {
			return images[i].OrderIndex < images[j].OrderIndex
		}
		return r.seq[images[i].ID] < r.seq[images[j].ID]
	})
	if images == nil {
		images = []*model.Image{}
	}
	return images
}

func (r *fakeImageRepo) GetByConversionID(ctx context.Context, conversionID uuid.UUID) ([]*model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ordered(conversionID), nil
}

func (r *fakeImageRepo) GetByConversionIDTx(ctx context.Context, tx pgx.Tx, conversionID uuid.UUID) ([]*model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ordered(conversionID), nil
}

func (r *fakeImageRepo) UpdateOrderIndexTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, orderIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok {
		return model.ErrImageNotFound
	}
	stored.OrderIndex = orderIndex
	return nil
}

func (r *fakeImageRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *fakeImageRepo) ShiftIndexesAfterTx(ctx context.Context, tx pgx.Tx, conversionID uuid.UUID, deletedIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.store {
		if stored.ConversionID == conversionID && stored.OrderIndex > deletedIndex {
			stored.OrderIndex--
		}
	}
	return nil
}

// ---------------------------------------------------------------------

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removeErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *fakeStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, key)
	return nil
}

// ---------------------------------------------------------------------

type fakeMaterializer struct {
	calls int
	err   error
}

func (m *fakeMaterializer) Materialize(ctx context.Context, conv *model.Conversion, images []*model.Image) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("conversions/%s/output.pdf", conv.ID), nil
}

// ---------------------------------------------------------------------

// noopCache: luôn miss, không lưu gì — tests đi thẳng xuống repo
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (noopCache) Ping(ctx context.Context) error { return nil }

// ---------------------------------------------------------------------

type testEnv struct {
	convRepo     *fakeConversionRepo
	imageRepo    *fakeImageRepo
	storage      *fakeStorage
	materializer *fakeMaterializer
	conversions  ConversionService
	images       ImageService
}

func newTestEnv() *testEnv {
	convRepo := newFakeConversionRepo()
	imageRepo := newFakeImageRepo()
	storage := newFakeStorage()
	materializer := &fakeMaterializer{}
	tx := fakeTxManager{}
	c := noopCache{}

	return &testEnv{
		convRepo:     convRepo,
		imageRepo:    imageRepo,
		storage:      storage,
		materializer: materializer,
		conversions:  NewConversionService(convRepo, imageRepo, storage, materializer, tx, c),
		images:       NewImageService(convRepo, imageRepo, storage, tx, c),
	}
}
