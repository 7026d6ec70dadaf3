package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/menu"
	"pizzeria-system/internal/models"
	"pizzeria-system/internal/storage"
)

func newTestServer(t *testing.T, pricing *models.Pricing) *httptest.Server {
	t.Helper()
	log := logger.New("order-test")
	catalog := menu.NewCatalog()
	store := storage.NewMemoryStore()
	service := NewService(catalog, store, pricing, nil, log)
	handler := NewHandler(service, catalog, pricing, log)
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func defaultPricing() *models.Pricing {
	return &models.Pricing{DeliveryFee: 5.0, ServiceFeeRate: 0.10}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func patchJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeSnapshot(t *testing.T, resp *http.Response) models.OrderSnapshot {
	t.Helper()
	defer resp.Body.Close()
	var snap models.OrderSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func TestGetMenu(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	resp, err := http.Get(server.URL + "/menu")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []menu.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "margherita", entries[0].ID)
	assert.Equal(t, 30.0, entries[0].Price)
}

func TestGetConfig(t *testing.T) {
	server := newTestServer(t, &models.Pricing{DeliveryFee: 7.0, ServiceFeeRate: 0.08})

	resp, err := http.Get(server.URL + "/config")
	require.NoError(t, err)
	defer resp.Body.Close()

	var cfg map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, 7.0, cfg["delivery_fee"])
	assert.Equal(t, 0.08, cfg["service_fee_rate"])
}

func TestCreateOrderEndToEnd(t *testing.T) {
	// Margherita x1 + Calabresa x2 = 100; fees 8% + 7.0; 10% coupon.
	server := newTestServer(t, &models.Pricing{DeliveryFee: 7.0, ServiceFeeRate: 0.08})

	one, two := 1, 2
	resp := postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{
			{MenuID: "margherita", Quantity: &one},
			{MenuID: "calabresa", Quantity: &two},
		},
		Discount: &models.DiscountSpec{Type: "percentage", Rate: 0.1},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	snap := decodeSnapshot(t, resp)
	assert.Equal(t, 1, snap.ID)
	assert.Equal(t, "NEW", snap.Status)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 100.0, snap.Subtotal)
	assert.InDelta(t, 10.0, snap.Discount, 1e-9)
	assert.InDelta(t, 105.0, snap.TotalFinal, 1e-9)
}

func TestCreateOrderUnknownMenuItem(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	resp := postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "hawaiana"}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.Equal(t, "invalid_menu_item", errBody["error"])

	// The aborted order must not have been stored.
	listResp, err := http.Get(server.URL + "/orders")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var snaps []models.OrderSnapshot
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&snaps))
	assert.Empty(t, snaps)
}

func TestCreateOrderMissingQuantityDefaultsToOne(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	resp := postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "margherita"}},
	})
	snap := decodeSnapshot(t, resp)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, 30.0, snap.Subtotal)
}

func TestGetOrder(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "portuguesa"}},
	}).Body.Close()

	resp, err := http.Get(server.URL + "/orders/1")
	require.NoError(t, err)
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, 1, snap.ID)
	assert.Equal(t, 38.0, snap.Subtotal)

	missing, err := http.Get(server.URL + "/orders/99")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestUpdateStatus(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "margherita"}},
	}).Body.Close()

	resp := patchJSON(t, server.URL+"/orders/1/status", StatusRequest{Status: "PREPARING"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeSnapshot(t, resp)
	assert.Equal(t, "PREPARING", snap.Status)

	t.Run("unknown status leaves order unchanged", func(t *testing.T) {
		bad := patchJSON(t, server.URL+"/orders/1/status", StatusRequest{Status: "COOKING"})
		defer bad.Body.Close()
		assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

		var errBody map[string]string
		require.NoError(t, json.NewDecoder(bad.Body).Decode(&errBody))
		assert.Equal(t, "invalid_status", errBody["error"])

		current, err := http.Get(server.URL + "/orders/1")
		require.NoError(t, err)
		assert.Equal(t, "PREPARING", decodeSnapshot(t, current).Status)
	})

	t.Run("missing order", func(t *testing.T) {
		resp := patchJSON(t, server.URL+"/orders/42/status", StatusRequest{Status: "DELIVERED"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPayOrder(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "margherita"}},
	}).Body.Close()

	tests := []struct {
		name       string
		method     string
		wantMethod string
	}{
		{"pix", "PIX", "PIX"},
		{"lowercase pix", "pix", "PIX"},
		{"card", "CARTAO", "CARTAO"},
		{"cash", "DINHEIRO", "DINHEIRO"},
		{"unknown falls back to cash", "voucher", "VOUCHER"},
		{"missing method defaults to cash", "", "DINHEIRO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/orders/1/pay", PaymentRequest{Method: tt.method})
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var payResp PaymentResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payResp))
			assert.Equal(t, tt.wantMethod, payResp.Method)
			assert.InDelta(t, 30.0+3.0+5.0, payResp.Order.TotalFinal, 1e-9)
		})
	}

	t.Run("missing order", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/orders/42/pay", PaymentRequest{Method: "PIX"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListOrders(t *testing.T) {
	server := newTestServer(t, defaultPricing())

	postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "margherita"}},
	}).Body.Close()
	postJSON(t, server.URL+"/orders", CreateOrderRequest{
		Items: []ItemRequest{{MenuID: "calabresa"}},
	}).Body.Close()

	resp, err := http.Get(server.URL + "/orders")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snaps []models.OrderSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, 1, snaps[0].ID)
	assert.Equal(t, 2, snaps[1].ID)
}
