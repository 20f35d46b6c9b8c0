package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivory-interiors/ivory-orders-api/models"
	"github.com/ivory-interiors/ivory-orders-api/services"
)

// useMockS3 swaps in the in-memory S3 store for the duration of a test
func useMockS3(t *testing.T) *services.MockS3Service {
	t.Helper()

	original := services.GetS3Service()
	t.Cleanup(func() { services.SetS3Service(original) })

	mock := services.NewMockS3Service()
	mock.SetAsMockForTesting()
	return mock
}

// multipartUpload builds a multipart request body with a file field and
// optional extra form fields
func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	assert.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadMedia(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestStaff(t, db)
	useMockNotifier(t)
	mockS3 := useMockS3(t)

	result, apiErr := createOrderWorkflow(db, CreateOrderRequest{CustomerPhone: "+15551234567", TotalAmount: 3500}, nil)
	assert.Nil(t, apiErr)

	router := setupTestRouter()
	router.POST("/orders/:id/media", mockAuthMiddleware(staff.Auth0ID, staff.Role, "mock-token"), UploadMedia)

	upload := func(orderID uint, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
		body, contentType := multipartUpload(t, filename, content, fields)
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/media", orderID), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("uploads a photo and records the event", func(t *testing.T) {
		w := upload(result.Order.ID, "living-room.jpg", []byte("fake image data"), nil)
		assert.Equal(t, http.StatusCreated, w.Code)

		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "living-room.jpg", data["file_name"])
		assert.Equal(t, "image/jpeg", data["content_type"])
		assert.Contains(t, data["url"], "mock=true")

		s3Key := data["s3_key"].(string)
		assert.True(t, mockS3.FileExists(s3Key))

		var media models.MediaFile
		assert.NoError(t, db.Where("order_id = ?", result.Order.ID).First(&media).Error)
		assert.Equal(t, s3Key, media.S3Key)
		assert.Equal(t, staff.ID, *media.UploadedByID)

		var event models.Event
		err := db.Where("order_id = ? AND event_type = ?", result.Order.ID, models.EventMediaAdded).First(&event).Error
		assert.NoError(t, err)
		assert.Contains(t, event.Description, "living-room.jpg")
	})

	t.Run("links media to a stage when stage_id is given", func(t *testing.T) {
		stage := stageOfType(t, db, result.Order.ID, models.StageInstallation)

		w := upload(result.Order.ID, "installed.png", []byte("fake image data"), map[string]string{
			"stage_id": fmt.Sprintf("%d", stage.ID),
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, float64(stage.ID), data["stage_id"])
	})

	t.Run("rejects a stage of another order", func(t *testing.T) {
		other, apiErr := createOrderWorkflow(db, CreateOrderRequest{CustomerPhone: "+15556667777", TotalAmount: 100}, nil)
		assert.Nil(t, apiErr)

		w := upload(result.Order.ID, "photo.jpg", []byte("data"), map[string]string{
			"stage_id": fmt.Sprintf("%d", other.Stages[0].ID),
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "STAGE_NOT_FOUND")
	})

	t.Run("rejects unsupported file types", func(t *testing.T) {
		w := upload(result.Order.ID, "invoice.pdf", []byte("%PDF-1.4"), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := parseResponse(t, w)
		assert.False(t, response["success"].(bool))
	})

	t.Run("rejects a request without a file", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/media", result.Order.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, parseResponse(t, w), "VALIDATION_ERROR")
	})

	t.Run("reports storage not configured", func(t *testing.T) {
		services.SetS3Service(nil)
		defer mockS3.SetAsMockForTesting()

		w := upload(result.Order.ID, "photo.jpg", []byte("data"), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assertErrorCode(t, parseResponse(t, w), "STORAGE_ERROR")
	})
}

func TestListMedia(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestStaff(t, db)
	useMockNotifier(t)
	useMockS3(t)

	result, apiErr := createOrderWorkflow(db, CreateOrderRequest{CustomerPhone: "+15551234567", TotalAmount: 3500}, nil)
	assert.Nil(t, apiErr)

	router := setupTestRouter()
	router.POST("/orders/:id/media", mockAuthMiddleware(staff.Auth0ID, staff.Role, "mock-token"), UploadMedia)
	router.GET("/orders/:id/media", mockAuthMiddleware(staff.Auth0ID, staff.Role, "mock-token"), ListMedia)

	for _, name := range []string{"before.jpg", "after.jpg"} {
		body, contentType := multipartUpload(t, name, []byte("image bytes"), nil)
		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/media", result.Order.ID), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("lists media with presigned URLs", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d/media", result.Order.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		data := parseResponse(t, w)["data"].([]interface{})
		assert.Len(t, data, 2)
		for _, raw := range data {
			file := raw.(map[string]interface{})
			assert.Contains(t, file["url"], "mock=true")
		}
	})

	t.Run("empty list for an order without media", func(t *testing.T) {
		other, apiErr := createOrderWorkflow(db, CreateOrderRequest{CustomerPhone: "+15558889999", TotalAmount: 50}, nil)
		assert.Nil(t, apiErr)

		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d/media", other.Order.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, parseResponse(t, w)["data"])
	})
}

func TestDeleteMedia(t *testing.T) {
	db := setupTestDB(t)
	staff := createTestStaff(t, db)
	useMockNotifier(t)
	mockS3 := useMockS3(t)

	result, apiErr := createOrderWorkflow(db, CreateOrderRequest{CustomerPhone: "+15551234567", TotalAmount: 3500}, nil)
	assert.Nil(t, apiErr)

	router := setupTestRouter()
	router.POST("/orders/:id/media", mockAuthMiddleware(staff.Auth0ID, staff.Role, "mock-token"), UploadMedia)
	router.DELETE("/orders/:id/media/:mediaId", mockAuthMiddleware(staff.Auth0ID, staff.Role, "mock-token"), DeleteMedia)

	body, contentType := multipartUpload(t, "to-remove.jpg", []byte("image bytes"), nil)
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/media", result.Order.ID), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	uploaded := parseResponse(t, w)["data"].(map[string]interface{})
	mediaID := uint(uploaded["id"].(float64))
	s3Key := uploaded["s3_key"].(string)

	t.Run("deletes the row and the stored object", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/orders/%d/media/%d", result.Order.ID, mediaID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, mockS3.FileExists(s3Key))

		var count int64
		db.Model(&models.MediaFile{}).Where("id = ?", mediaID).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("unknown media id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/orders/%d/media/%d", result.Order.ID, mediaID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "MEDIA_NOT_FOUND")
	})
}
