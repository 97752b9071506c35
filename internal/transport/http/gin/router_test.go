package httpgin

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/export"
	"github.com/kirinyoku/standpos/internal/repository"
	"github.com/kirinyoku/standpos/internal/repository/memory"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
	"github.com/kirinyoku/standpos/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestAPI(t *testing.T, writesPerMinute int) testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memory.New()
	logger := slog.New(slog.DiscardHandler)
	pubsub := redisrepo.NewLedgerPubSub(rdb)

	svcs := service.NewServices(store, redisrepo.New(rdb), pubsub, export.New(t.TempDir()), logger, service.Config{})

	deps := Deps{
		Idempotency: redisrepo.NewIdempotencyStore(rdb, time.Hour),
		Feed:        pubsub,
	}
	if writesPerMinute > 0 {
		deps.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "writes", writesPerMinute, time.Minute)
	}

	return testAPI{router: NewRouter(svcs, deps, logger), store: store}
}

func (a testAPI) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func (a testAPI) sell(t *testing.T, body string) FinalizeSaleResponse {
	t.Helper()

	w := a.do(t, http.MethodPost, "/sales", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp FinalizeSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e.Error
}

const twoPilsenCash = `{
	"line_items": [{"flavor_name": "Pilsen", "unit_price": "10", "quantity": 2}],
	"payment_method": "cash",
	"cash_received": "50"
}`

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, 0)

	w := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestConfig_ETag(t *testing.T) {
	api := newTestAPI(t, 0)

	w := api.do(t, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cfg domain.EventConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Len(t, cfg.FixedFlavors, 6)

	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	w = api.do(t, http.MethodGet, "/config", "", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = api.do(t, http.MethodPut, "/config", `{
		"starting_cash_float": "100",
		"fixed_flavors": [{"name": "IPA", "price": "12"}],
		"seasonal_flavors": []
	}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/config", "", "If-None-Match", tag)
	require.Equal(t, http.StatusOK, w.Code, "changed config gets a new tag")
	assert.NotEqual(t, tag, w.Header().Get("ETag"))
}

func TestPutConfig_Invalid(t *testing.T) {
	api := newTestAPI(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"fixed_flavors": [`},
		{"blank name", `{"fixed_flavors": [{"name": "", "price": "1"}]}`},
		{"negative price", `{"fixed_flavors": [{"name": "IPA", "price": "-1"}]}`},
		{"duplicate", `{"fixed_flavors": [{"name": "IPA", "price": "1"}], "seasonal_flavors": [{"name": "ipa", "price": "2"}]}`},
		{"negative float", `{"starting_cash_float": "-5"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(t, http.MethodPut, "/config", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestFinalizeSale(t *testing.T) {
	api := newTestAPI(t, 0)

	resp := api.sell(t, twoPilsenCash)
	assert.Equal(t, int64(1), resp.SaleID)
	assert.Equal(t, "20.00", resp.Total.StringFixed(2))
	assert.Equal(t, "30.00", resp.ChangeGiven.StringFixed(2))

	w := api.do(t, http.MethodGet, "/sales/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Equal(t, domain.SalePaid, sale.Status)
	assert.Equal(t, domain.PaymentCash, sale.PaymentMethod)

	w = api.do(t, http.MethodGet, "/sales/1/events", "")
	require.Equal(t, http.StatusOK, w.Code)

	var events []domain.SaleEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventSaleCreated, events[0].Kind)
}

func TestFinalizeSale_Rejected(t *testing.T) {
	api := newTestAPI(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"empty cart", `{"line_items": [], "payment_method": "pix"}`},
		{"no method", `{"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 1}]}`},
		{"unknown method", `{"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 1}], "payment_method": "bitcoin"}`},
		{"cash short", `{"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 1}], "payment_method": "cash", "cash_received": "5"}`},
		{"vip without name", `{"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 1}], "payment_method": "vip"}`},
		{"zero quantity", `{"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 0}], "payment_method": "pix"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/sales", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := api.do(t, http.MethodGet, "/sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestFinalizeSale_IdempotentReplay(t *testing.T) {
	api := newTestAPI(t, 0)

	first := api.do(t, http.MethodPost, "/sales", twoPilsenCash, "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "till-1-0001", first.Header().Get("Idempotency-Key"))

	second := api.do(t, http.MethodPost, "/sales", twoPilsenCash, "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := api.do(t, http.MethodGet, "/sales", "")
	var list []domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestFinalizeSale_RetryableStorageError(t *testing.T) {
	api := newTestAPI(t, 0)

	api.store.Fail("vips.Accrue", fmt.Errorf("accrue: %w", repository.ErrRetryable))

	w := api.do(t, http.MethodPost, "/sales", `{
		"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 1}],
		"payment_method": "vip",
		"vip_name": "Ana"
	}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	api.store.Fail("vips.Accrue", errors.New("disk full"))

	w = api.do(t, http.MethodPost, "/sales", `{
		"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 1}],
		"payment_method": "vip",
		"vip_name": "Ana"
	}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", errorOf(t, w))
}

func TestQuoteCart(t *testing.T) {
	api := newTestAPI(t, 0)

	w := api.do(t, http.MethodPost, "/cart/quote", `{"items": [
		{"flavor": "Manga", "quantity": 2},
		{"flavor": "IPA", "quantity": 1},
		{"flavor": "Manga", "quantity": 3}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote QuoteCartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	require.Len(t, quote.LineItems, 2)
	assert.Equal(t, "Manga", quote.LineItems[0].FlavorName)
	assert.Equal(t, 3, quote.LineItems[0].Quantity)
	assert.Equal(t, "40.00", quote.Total.StringFixed(2))

	body, err := json.Marshal(map[string]any{"line_items": quote.LineItems, "payment_method": "pix"})
	require.NoError(t, err)
	sold := api.sell(t, string(body))
	assert.True(t, sold.Total.Equal(quote.Total))

	w = api.do(t, http.MethodPost, "/cart/quote", `{"items": [{"flavor": "Stout", "quantity": 1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "items[0].flavor")

	w = api.do(t, http.MethodPost, "/cart/quote", `{"items": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSales_Search(t *testing.T) {
	api := newTestAPI(t, 0)

	for range 12 {
		api.sell(t, twoPilsenCash)
	}

	w := api.do(t, http.MethodGet, "/sales?q=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))

	ids := make([]int64, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{12, 11, 10, 1}, ids)
}

func TestGetSale_Errors(t *testing.T) {
	api := newTestAPI(t, 0)

	w := api.do(t, http.MethodGet, "/sales/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/sales/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "sale not found", errorOf(t, w))
}

func TestRefund(t *testing.T) {
	api := newTestAPI(t, 0)

	api.sell(t, twoPilsenCash)
	api.sell(t, `{
		"line_items": [
			{"flavor_name": "Pilsen", "unit_price": "10", "quantity": 1},
			{"flavor_name": "Manga", "unit_price": "12", "quantity": 1}
		],
		"payment_method": "card"
	}`)

	w := api.do(t, http.MethodPost, "/sales/1/refund", "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/sales/1/refund", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "sale already refunded", errorOf(t, w))

	w = api.do(t, http.MethodPost, "/sales/2/refund", `{"line_index": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/sales/2/refund", `{"line_index": 0}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/sales/2", "")
	var sale domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	require.Len(t, sale.LineItems, 1)
	assert.Equal(t, "Manga", sale.LineItems[0].FlavorName)
	assert.Equal(t, "12.00", sale.Total.StringFixed(2))

	w = api.do(t, http.MethodPost, "/sales/99/refund", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVipSettle(t *testing.T) {
	api := newTestAPI(t, 0)

	api.sell(t, `{
		"line_items": [{"flavor_name": "IPA", "unit_price": "10", "quantity": 3}],
		"payment_method": "vip",
		"vip_name": "Ana"
	}`)

	w := api.do(t, http.MethodGet, "/vips", "")
	require.Equal(t, http.StatusOK, w.Code)
	var vips []domain.VipAccount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vips))
	require.Len(t, vips, 1)
	assert.Equal(t, "30.00", vips[0].AccumulatedTotal.StringFixed(2))

	w = api.do(t, http.MethodPost, "/vips/Ana/settle", `{"payment_method": "vip"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/vips/Ana/settle", `{"payment_method": "pix"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var st domain.VipSettlement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "30.00", st.Amount.StringFixed(2))

	w = api.do(t, http.MethodPost, "/vips/Ana/settle", `{"payment_method": "pix"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "nothing to settle", errorOf(t, w))

	w = api.do(t, http.MethodPost, "/vips/Bob/settle", `{"payment_method": "cash"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReconciliation(t *testing.T) {
	api := newTestAPI(t, 0)

	w := api.do(t, http.MethodPut, "/config", `{
		"starting_cash_float": "100",
		"fixed_flavors": [{"name": "Pilsen", "price": "10"}]
	}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	api.sell(t, twoPilsenCash)
	api.sell(t, `{
		"line_items": [{"flavor_name": "Pilsen", "unit_price": "10", "quantity": 1}],
		"payment_method": "vip",
		"vip_name": "Ana"
	}`)

	w = api.do(t, http.MethodGet, "/reconciliation", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "30.00", report.TotalRevenue.StringFixed(2))
	assert.Equal(t, "130.00", report.CashDrawerTotal.StringFixed(2))
	assert.Equal(t, 3, report.UnitsByFlavor["Pilsen"])
	assert.Equal(t, "10.00", report.OutstandingVip.StringFixed(2))
}

func TestReset(t *testing.T) {
	api := newTestAPI(t, 0)

	api.sell(t, twoPilsenCash)

	w := api.do(t, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/sales", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(t, http.MethodGet, "/vips", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	api.sell(t, twoPilsenCash)
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, 2)

	for range 2 {
		api.sell(t, twoPilsenCash)
	}

	w := api.do(t, http.MethodPost, "/sales", twoPilsenCash)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = api.do(t, http.MethodGet, "/sales", "")
	assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")
}

func TestStream_Disabled(t *testing.T) {
	svcs := service.NewServices(memory.New(), nil, nil, nil, nil, service.Config{})
	router := NewRouter(svcs, Deps{}, slog.New(slog.DiscardHandler))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStream(t *testing.T) {
	api := newTestAPI(t, 0)

	srv := httptest.NewServer(api.router)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/stream")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"),
		resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event:"); ok {
				events <- strings.TrimSpace(name)
			}
		}
		close(events)
	}()

	expect := func(want string) {
		t.Helper()
		select {
		case got := <-events:
			assert.Equal(t, want, got)
		case <-time.After(3 * time.Second):
			t.Fatalf("no %q event", want)
		}
	}

	expect("ready")

	post, err := http.Post(srv.URL+"/sales", "application/json", bytes.NewBufferString(twoPilsenCash))
	require.NoError(t, err)
	_ = post.Body.Close()
	require.Equal(t, http.StatusCreated, post.StatusCode)

	expect(string(redisrepo.ChangeSaleFinalized))
}
