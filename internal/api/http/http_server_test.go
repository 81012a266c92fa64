package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/olyamironova/orderbook/internal/adapter/in_memory"
	"github.com/olyamironova/orderbook/internal/api/dto"
	"github.com/olyamironova/orderbook/internal/core"
	"github.com/olyamironova/orderbook/internal/idgen"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	book := core.NewOrderBook(core.WithIDGenerator(idgen.NewSequence("o-")))
	eng := core.NewEngine(book, "BTC-USD", in_memory.NewMemoryRepo(), in_memory.NewCache(), nil, logger)
	return NewHTTPServer(eng, nil, logger).Router()
}

func send(t *testing.T, h http.Handler, method, path, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func place(t *testing.T, h http.Handler, side string, price, qty int) dto.PlaceOrderResponse {
	t.Helper()
	var resp dto.PlaceOrderResponse
	body, err := json.Marshal(map[string]any{"side": side, "price": price, "quantity": qty})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, send(t, h, http.MethodPost, "/orders", string(body), &resp))
	return resp
}

func TestHTTP_RealisticScenario(t *testing.T) {
	h := newTestServer(t)

	place(t, h, "SELL", 105, 100)
	place(t, h, "SELL", 104, 200)
	place(t, h, "SELL", 103, 150)
	place(t, h, "BUY", 102, 180)
	place(t, h, "BUY", 101, 220)
	place(t, h, "BUY", 100, 300)

	resp := place(t, h, "buy", 106, 500)
	require.Len(t, resp.Trades, 3)
	require.True(t, resp.Filled.Equal(decimal.NewFromInt(450)))
	require.True(t, resp.Remaining.Equal(decimal.NewFromInt(50)))
	require.Equal(t, "PARTIALLY_FILLED", resp.Status)

	var bid dto.Level
	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/orderbook/best-bid", "", &bid))
	require.True(t, bid.Price.Equal(decimal.NewFromInt(106)))
	require.True(t, bid.Quantity.Equal(decimal.NewFromInt(50)))

	require.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/orderbook/best-ask", "", nil))

	var book dto.GetOrderbookResponse
	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/orderbook?depth=2", "", &book))
	require.Equal(t, "BTC-USD", book.Symbol)
	require.Len(t, book.Bids, 2)
	require.Empty(t, book.Asks)

	var trades dto.GetTradesResponse
	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/orders/"+resp.OrderID+"/trades", "", &trades))
	require.Len(t, trades.Trades, 3)

	var order dto.GetOrderResponse
	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/orders/"+resp.OrderID, "", &order))
	require.True(t, order.Order.Remaining.Equal(decimal.NewFromInt(50)))
}

func TestHTTP_Validation(t *testing.T) {
	h := newTestServer(t)

	for name, body := range map[string]string{
		"bad side":       `{"side":"HOLD","price":100,"quantity":1}`,
		"zero quantity":  `{"side":"BUY","price":100,"quantity":0}`,
		"negative price": `{"side":"SELL","price":-1,"quantity":1}`,
		"fractional":     `{"side":"BUY","price":"100.5","quantity":1}`,
		"missing side":   `{"price":100,"quantity":1}`,
		"malformed":      `{"side":`,
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, http.StatusBadRequest, send(t, h, http.MethodPost, "/orders", body, nil))
		})
	}

	place(t, h, "BUY", 50, math.MaxInt64)
	require.Equal(t, http.StatusBadRequest,
		send(t, h, http.MethodPost, "/orders", `{"side":"BUY","price":50,"quantity":1}`, nil))

	require.Equal(t, http.StatusBadRequest, send(t, h, http.MethodGet, "/orderbook?depth=-1", "", nil))
	require.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/orders/nope", "", nil))
	require.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/orders/nope/trades", "", nil))
	require.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/orderbook/best-bid", "", nil))
}

func TestHTTP_Healthz(t *testing.T) {
	h := newTestServer(t)
	var body map[string]string
	require.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/healthz", "", &body))
	require.Equal(t, "ok", body["status"])
}
