package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/store/db"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products []db.Product
	product  *db.Product
	count    int64
	dangling int64
	error    error

	createCalls    int
	lastImageURL   string
	lastCategories []uuid.UUID
}

func (m *mockProductStore) FindPage(_ context.Context, _ store.PageSpec) ([]db.Product, int64, error) {
	if m.error != nil {
		return nil, 0, m.error
	}
	return m.products, m.count, nil
}

func (m *mockProductStore) FindByID(_ context.Context, _ uuid.UUID) (*db.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) Create(_ context.Context, _, _ string, _ int64, categoryIDs []uuid.UUID, imageURL string) (*db.Product, error) {
	m.createCalls++
	m.lastImageURL = imageURL
	m.lastCategories = categoryIDs
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) Update(_ context.Context, _ uuid.UUID, _, _ string, _ int64, categoryIDs []uuid.UUID, imageURL string) (*db.Product, error) {
	m.lastImageURL = imageURL
	m.lastCategories = categoryIDs
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func (m *mockProductStore) CountDanglingOrderRefs(_ context.Context) (int64, error) {
	return m.dangling, nil
}

// mockUploader records uploads and returns a fixed URL.
type mockUploader struct {
	url     string
	error   error
	calls   int
	lastKey string
}

func (m *mockUploader) Upload(_ context.Context, _ []byte, name, _, folder string) (string, error) {
	m.calls++
	m.lastKey = folder + "/" + name
	if m.error != nil {
		return "", m.error
	}
	return m.url, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_ProductService_FindAndCount_resolvesCategoryRefs(t *testing.T) {
	liveID := uuid.New()
	deadID := uuid.New()
	productID := uuid.New()
	createdAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	// given: the product references one live and one deleted category
	products := &mockProductStore{
		products: []db.Product{{
			ID:          productID,
			Name:        "Keyboard",
			Description: "Mechanical",
			Price:       4500,
			CategoryIDs: []uuid.UUID{liveID, deadID},
			ImageURL:    "https://example.com/kb.png",
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}},
		count: 1,
	}
	categories := &mockCategoryStore{
		refs: []db.CategoryRef{{ID: liveID, Name: "Peripherals"}},
	}
	service := NewProductService(products, categories, &mockUploader{}, testLogger())

	// when
	page, err := service.FindAndCount(context.Background(), PageQuery{Page: 1, Limit: 10})

	// then: the dead reference is dropped, the live one carries its name
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, int64(1), page.Count)
	assert.Equal(t, []CategoryRefDto{{ID: liveID.String(), Name: "Peripherals"}}, page.Products[0].Categories)
	assert.ElementsMatch(t, []uuid.UUID{liveID, deadID}, categories.lastRefIDs)
}

func Test_ProductService_FindAndCount_deduplicatesRefLookup(t *testing.T) {
	sharedID := uuid.New()
	createdAt := time.Now()

	// given: two products share the same category
	products := &mockProductStore{
		products: []db.Product{
			{ID: uuid.New(), Name: "A", CategoryIDs: []uuid.UUID{sharedID}, CreatedAt: createdAt, UpdatedAt: createdAt},
			{ID: uuid.New(), Name: "B", CategoryIDs: []uuid.UUID{sharedID}, CreatedAt: createdAt, UpdatedAt: createdAt},
		},
		count: 2,
	}
	categories := &mockCategoryStore{refs: []db.CategoryRef{{ID: sharedID, Name: "Shared"}}}
	service := NewProductService(products, categories, &mockUploader{}, testLogger())

	// when
	page, err := service.FindAndCount(context.Background(), PageQuery{Page: 1, Limit: 10})

	// then: the shared id is looked up once and resolved on both products
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{sharedID}, categories.lastRefIDs)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Shared", page.Products[0].Categories[0].Name)
	assert.Equal(t, "Shared", page.Products[1].Categories[0].Name)
}

func Test_ProductService_Create(t *testing.T) {
	productID := uuid.New()
	categoryID := uuid.New()
	createdAt := time.Now()

	stored := &db.Product{
		ID:          productID,
		Name:        "Keyboard",
		Description: "Mechanical",
		Price:       4500,
		CategoryIDs: []uuid.UUID{categoryID},
		ImageURL:    "https://bucket.s3.amazonaws.com/products/1-kb.png",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	dto := ProductCreateDto{
		Name:        "Keyboard",
		Description: "Mechanical",
		Price:       4500,
		CategoryIDs: []string{categoryID.String()},
	}

	t.Run("Success - without file the default image is used", func(t *testing.T) {
		// given
		products := &mockProductStore{product: stored}
		uploader := &mockUploader{}
		service := NewProductService(products, &mockCategoryStore{refs: []db.CategoryRef{{ID: categoryID, Name: "Peripherals"}}}, uploader, testLogger())
		// when
		created, err := service.Create(context.Background(), dto, nil)
		// then
		require.NoError(t, err)
		assert.NotNil(t, created)
		assert.Zero(t, uploader.calls)
		assert.Equal(t, defaultImageURL, products.lastImageURL)
	})

	t.Run("Success - file uploaded before the insert", func(t *testing.T) {
		// given
		products := &mockProductStore{product: stored}
		uploader := &mockUploader{url: "https://bucket.s3.amazonaws.com/products/1-kb.png"}
		service := NewProductService(products, &mockCategoryStore{refs: []db.CategoryRef{{ID: categoryID, Name: "Peripherals"}}}, uploader, testLogger())
		// when
		created, err := service.Create(context.Background(), dto, &FileUpload{Data: []byte("png"), Name: "kb.png", ContentType: "image/png"})
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, uploader.calls)
		assert.Equal(t, uploader.url, products.lastImageURL)
		assert.Equal(t, uploader.url, created.ImageURL)
	})

	t.Run("Error - failed upload never reaches the store", func(t *testing.T) {
		// given
		products := &mockProductStore{product: stored}
		uploader := &mockUploader{error: apperrors.ErrUploadFailed}
		service := NewProductService(products, &mockCategoryStore{}, uploader, testLogger())
		// when
		created, err := service.Create(context.Background(), dto, &FileUpload{Data: []byte("png"), Name: "kb.png", ContentType: "image/png"})
		// then
		assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
		assert.Nil(t, created)
		assert.Zero(t, products.createCalls)
	})

	t.Run("Error - malformed category id", func(t *testing.T) {
		// given
		products := &mockProductStore{product: stored}
		service := NewProductService(products, &mockCategoryStore{}, &mockUploader{}, testLogger())
		bad := dto
		bad.CategoryIDs = []string{"not-a-uuid"}
		// when
		created, err := service.Create(context.Background(), bad, nil)
		// then
		assert.Error(t, err)
		assert.Nil(t, created)
		assert.Zero(t, products.createCalls)
	})
}

func Test_ProductService_Update_keepsImageWithoutFile(t *testing.T) {
	productID := uuid.New()
	createdAt := time.Now()
	stored := &db.Product{
		ID:        productID,
		Name:      "Keyboard",
		ImageURL:  "https://example.com/original.png",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	// given
	products := &mockProductStore{product: stored}
	service := NewProductService(products, &mockCategoryStore{}, &mockUploader{}, testLogger())

	// when
	updated, err := service.Update(context.Background(), productID, ProductUpdateDto{Name: "Keyboard", Description: "Mechanical", Price: 4500}, nil)

	// then: the store receives an empty URL, meaning keep the current one
	require.NoError(t, err)
	assert.Empty(t, products.lastImageURL)
	assert.Equal(t, stored.ImageURL, updated.ImageURL)
}

func Test_ProductService_DeleteByID(t *testing.T) {
	productID := uuid.New()

	t.Run("Success - dangling order refs only logged", func(t *testing.T) {
		// given
		products := &mockProductStore{dangling: 3}
		service := NewProductService(products, &mockCategoryStore{}, &mockUploader{}, testLogger())
		// when
		err := service.DeleteByID(context.Background(), productID)
		// then
		assert.NoError(t, err)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		// given
		products := &mockProductStore{error: apperrors.ErrProductNotFound}
		service := NewProductService(products, &mockCategoryStore{}, &mockUploader{}, testLogger())
		// when
		err := service.DeleteByID(context.Background(), productID)
		// then
		assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	})
}
