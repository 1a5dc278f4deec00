package rest

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/internal/service"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	page    *service.ProductPageDto
	product *service.ProductDto
	error   error

	lastCreate service.ProductCreateDto
	lastFile   *service.FileUpload
}

func (m *mockProductService) FindAndCount(_ context.Context, _ service.PageQuery) (*service.ProductPageDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.page, nil
}

func (m *mockProductService) FindByID(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Create(_ context.Context, product service.ProductCreateDto, file *service.FileUpload) (*service.ProductDto, error) {
	m.lastCreate = product
	m.lastFile = file
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Update(_ context.Context, _ uuid.UUID, _ service.ProductUpdateDto, file *service.FileUpload) (*service.ProductDto, error) {
	m.lastFile = file
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) DeleteByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

// multipartBody builds a multipart form with a DTO field and an optional file.
func multipartBody(t *testing.T, dtoField, dtoJSON string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(dtoField, dtoJSON))
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func sampleProductDto() *service.ProductDto {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	return &service.ProductDto{
		ID:          uuid.NewString(),
		Name:        "Keyboard",
		Description: "Mechanical",
		Price:       4500,
		Categories:  []service.CategoryRefDto{},
		ImageURL:    "https://placehold.co/300x300",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func Test_ProductAPI_Create_JSON(t *testing.T) {
	t.Run("Success - plain JSON body without file", func(t *testing.T) {
		// given
		mockService := &mockProductService{product: sampleProductDto()}
		api := NewProductHandler(mockService, discardLogger())
		body := `{"name":"Keyboard","description":"Mechanical","price":4500}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Nil(t, mockService.lastFile)
		assert.Equal(t, "Keyboard", mockService.lastCreate.Name)
	})

	t.Run("Error - validation failure", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{product: sampleProductDto()}, discardLogger())
		body := `{"name":"","description":"Mechanical","price":4500}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Error - negative price", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{product: sampleProductDto()}, discardLogger())
		body := `{"name":"Keyboard","description":"Mechanical","price":-1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_ProductAPI_Create_Multipart(t *testing.T) {
	t.Run("Success - DTO and file extracted from the form", func(t *testing.T) {
		// given
		mockService := &mockProductService{product: sampleProductDto()}
		api := NewProductHandler(mockService, discardLogger())
		body, contentType := multipartBody(t, "createProductDto", `{"name":"Keyboard","description":"Mechanical","price":4500}`, "kb.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusCreated, rr.Code)
		require.NotNil(t, mockService.lastFile)
		assert.Equal(t, "kb.png", mockService.lastFile.Name)
		assert.Equal(t, []byte("png-bytes"), mockService.lastFile.Data)
		assert.Equal(t, "Keyboard", mockService.lastCreate.Name)
	})

	t.Run("Success - form without file", func(t *testing.T) {
		// given
		mockService := &mockProductService{product: sampleProductDto()}
		api := NewProductHandler(mockService, discardLogger())
		body, contentType := multipartBody(t, "createProductDto", `{"name":"Keyboard","description":"Mechanical","price":4500}`, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Nil(t, mockService.lastFile)
	})

	t.Run("Error - missing DTO field", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{product: sampleProductDto()}, discardLogger())
		body, contentType := multipartBody(t, "unrelatedField", `{}`, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Error - DTO field is not JSON", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{product: sampleProductDto()}, discardLogger())
		body, contentType := multipartBody(t, "createProductDto", `not-json`, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Error - upload failure maps to 502", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{error: apperrors.ErrUploadFailed}, discardLogger())
		body, contentType := multipartBody(t, "createProductDto", `{"name":"Keyboard","description":"Mechanical","price":4500}`, "kb.png", []byte("png"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		// when
		api.Create(rr, req)

		// then
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func Test_ProductAPI_Update(t *testing.T) {
	mockID := uuid.New()

	t.Run("Success - multipart update with replacement image", func(t *testing.T) {
		// given
		mockService := &mockProductService{product: sampleProductDto()}
		api := NewProductHandler(mockService, discardLogger())
		body, contentType := multipartBody(t, "updateProductDto", `{"name":"Keyboard","description":"Mechanical","price":4600}`, "new.png", []byte("png"))
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+mockID.String(), body)
		req.Header.Set("Content-Type", contentType)
		req.SetPathValue("id", mockID.String())
		rr := httptest.NewRecorder()

		// when
		api.Update(rr, req)

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, mockService.lastFile)
		assert.Equal(t, "new.png", mockService.lastFile.Name)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{error: apperrors.ErrProductNotFound}, discardLogger())
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+mockID.String(), strings.NewReader(`{"name":"Keyboard","description":"Mechanical","price":4500}`))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("id", mockID.String())
		rr := httptest.NewRecorder()

		// when
		api.Update(rr, req)

		// then
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func Test_ProductAPI_FindAndCount(t *testing.T) {
	t.Run("Error - service failure maps to 500", func(t *testing.T) {
		// given
		api := NewProductHandler(&mockProductService{error: errors.New("query failed")}, discardLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAndCount(rr, req)

		// then
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
