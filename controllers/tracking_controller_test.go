package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackOrder(t *testing.T) {
	db := setupTestDB(t)
	useMockNotifier(t)

	result, apiErr := createOrderWorkflow(db, CreateOrderRequest{
		CustomerPhone: "+15551234567",
		CustomerName:  "Dana Mercer",
		TotalAmount:   3500,
	}, nil)
	assert.Nil(t, apiErr)

	router := setupTestRouter()
	router.GET("/track", TrackOrder)

	track := func(phone, orderNumber string) *httptest.ResponseRecorder {
		q := url.Values{}
		if phone != "" {
			q.Set("phone", phone)
		}
		if orderNumber != "" {
			q.Set("order_number", orderNumber)
		}
		req, _ := http.NewRequest(http.MethodGet, "/track?"+q.Encode(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("returns order for matching phone and order number", func(t *testing.T) {
		w := track("+15551234567", result.Order.OrderNumber)
		assert.Equal(t, http.StatusOK, w.Code)

		data := parseResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, result.Order.OrderNumber, data["order_number"])
		assert.Equal(t, "PENDING_MEASUREMENT", data["status"])
		assert.Len(t, data["stages"].([]interface{}), 13)
	})

	t.Run("accepts messy but equivalent phone formats", func(t *testing.T) {
		w := track("(555) 123-4567", result.Order.OrderNumber)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong phone and wrong order number are indistinguishable", func(t *testing.T) {
		wrongPhone := track("+15550000000", result.Order.OrderNumber)
		wrongNumber := track("+15551234567", "IV-2026-9999")

		assert.Equal(t, http.StatusNotFound, wrongPhone.Code)
		assert.Equal(t, http.StatusNotFound, wrongNumber.Code)

		phoneErr := parseResponse(t, wrongPhone)["error"].(map[string]interface{})
		numberErr := parseResponse(t, wrongNumber)["error"].(map[string]interface{})
		assert.Equal(t, "ORDER_NOT_FOUND", phoneErr["code"])
		assert.Equal(t, phoneErr["message"], numberErr["message"], "misses must not reveal which part matched")
	})

	t.Run("order number of a different customer is not found", func(t *testing.T) {
		other, apiErr := createOrderWorkflow(db, CreateOrderRequest{CustomerPhone: "+15559998888", TotalAmount: 100}, nil)
		assert.Nil(t, apiErr)

		w := track("+15551234567", other.Order.OrderNumber)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "ORDER_NOT_FOUND")
	})

	tests := []struct {
		name        string
		phone       string
		orderNumber string
	}{
		{"missing phone", "", "IV-2026-0001"},
		{"missing order number", "+15551234567", ""},
		{"missing both", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := track(tt.phone, tt.orderNumber)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assertErrorCode(t, parseResponse(t, w), "VALIDATION_ERROR")
		})
	}

	t.Run("unparseable phone is a validation error", func(t *testing.T) {
		w := track("not-a-phone", result.Order.OrderNumber)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, parseResponse(t, w), "VALIDATION_ERROR")
	})

	t.Run("tracking works without authentication", func(t *testing.T) {
		// No auth middleware registered on the route; a plain request succeeds
		req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/track?phone=%s&order_number=%s",
			url.QueryEscape("+15551234567"), result.Order.OrderNumber), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
