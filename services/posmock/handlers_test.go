// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package posmock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewStore()
	SeedDemo(store, "t1")

	r := gin.New()
	RegisterRoutes(r, NewServer(store, nil), NewMetrics(prometheus.NewRegistry()))
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetProducts_NestedEnvelope(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/theater-products/t1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Products []Product `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Products, 3)
}

func TestGetCombos_FlatEnvelope(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/combo-offers/t1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Combos put the array straight in data, no inner key.
	var resp struct {
		Data []ComboOffer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Movie Night", resp.Data[0].Name)
}

func TestGetProducts_UnknownTheater(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/theater-products/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrder_Endpoint(t *testing.T) {
	r, store := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/orders", CreateOrderRequest{
		TheaterID: "t1",
		Items: []CreateOrderItemRequest{
			{ProductID: "prod-cola", Name: "Cola", Size: "600 ML",
				UnitPrice: 120, Count: 1, Kind: "product"},
		},
		Subtotal: 120, Tax: 5.71, Total: 120,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "K0001", resp.Data.OrderNumber)
	require.Len(t, resp.Data.Items, 1)
	assert.NotEmpty(t, resp.Data.Items[0].LineID)

	_, err := store.FindOrder("t1", resp.Data.ID)
	assert.NoError(t, err)
}

func TestCreateOrder_ValidationAndStockFailures(t *testing.T) {
	r, _ := newTestRouter(t)

	// Missing products array fails binding.
	w := doJSON(t, r, http.MethodPost, "/v1/orders", map[string]any{"theaterId": "t1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Ordering more than the shelf holds conflicts.
	w = doJSON(t, r, http.MethodPost, "/v1/orders", CreateOrderRequest{
		TheaterID: "t1",
		Items: []CreateOrderItemRequest{
			{ProductID: "prod-cola", Name: "Cola", UnitPrice: 120, Count: 99, Kind: "product"},
		},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderLifecycle_Endpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/orders", CreateOrderRequest{
		TheaterID: "t1",
		Items: []CreateOrderItemRequest{
			{ProductID: "prod-samosa", Name: "Samosa", UnitPrice: 50, Count: 2, Kind: "product"},
			{ProductID: "prod-cola", Name: "Cola", UnitPrice: 120, Count: 1, Kind: "product"},
		},
		Subtotal: 220, Tax: 10.71, Total: 225,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.ID

	// Fetch by order number.
	w = doJSON(t, r, http.MethodGet, "/v1/orders/theater/t1/"+created.Data.OrderNumber, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Cancel one line.
	lineID := created.Data.Items[0].LineID
	w = doJSON(t, r, http.MethodDelete, "/v1/orders/theater/t1/"+orderID+"/products/"+lineID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var afterLine struct {
		Data Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &afterLine))
	assert.Len(t, afterLine.Data.Items, 1)

	// Cancelling the same line again is a 404.
	w = doJSON(t, r, http.MethodDelete, "/v1/orders/theater/t1/"+orderID+"/products/"+lineID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Cancel the whole order.
	w = doJSON(t, r, http.MethodPut, "/v1/orders/theater/t1/"+orderID+"/status",
		UpdateStatusRequest{Status: "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	// A cancelled order refuses further changes.
	w = doJSON(t, r, http.MethodPut, "/v1/orders/theater/t1/"+orderID+"/status",
		UpdateStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/v1/orders/theater/t1/any/status",
		map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
