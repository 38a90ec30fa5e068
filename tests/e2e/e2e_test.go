//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retailpos/internal/config"
	"retailpos/internal/infra"
	"retailpos/internal/middleware"
	"retailpos/internal/model"
	"retailpos/internal/router"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret-key"
	testStore  = "STORE"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// mintToken issues a signed access token; this service validates tokens but
// never issues them, so the tests play the part of the auth provider.
func mintToken(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "e2e-" + role,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	db         *gorm.DB
	cashier    string
	supervisor string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("retailpos_test"),
		tcPostgres.WithUsername("retailpos"),
		tcPostgres.WithPassword("retailpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                      8000,
		Env:                       "test",
		WorkerPoolSize:            1,
		DatabaseURL:               pgURL,
		RedisURL:                  rdURL,
		JWTSecret:                 testSecret,
		StoreID:                   testStore,
		MaxCashLimit:              5000,
		CancellationWindowMinutes: 60,
		PrinterDevice:             t.TempDir() + "/printer",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(cfg, db, rdb))
	t.Cleanup(srv.Close)

	return &testEnv{
		server:     srv,
		db:         db,
		cashier:    mintToken(t, middleware.RoleCashier),
		supervisor: mintToken(t, middleware.RoleSupervisor),
	}
}

// seedProduct inserts a product plus its inventory row for the test store.
func seedProduct(t *testing.T, db *gorm.DB, name, code string, retail, stock float64) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:             uuid.New(),
		Code:           code,
		Name:           name,
		RetailPrice:    decimal.NewFromFloat(retail),
		WholesalePrice: decimal.NewFromFloat(retail * 0.8),
		IsActive:       true,
	}
	require.NoError(t, db.Create(p).Error)
	require.NoError(t, db.Create(&model.StoreInventory{
		ID:        uuid.New(),
		ProductID: p.ID,
		StoreID:   testStore,
		Stock:     decimal.NewFromFloat(stock),
	}).Error)
	return p
}

func openShift(t *testing.T, env *testEnv) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/shifts",
		jsonBody(t, map[string]any{"initial_cash": 1000.0}), env.cashier)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var shift struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &shift)
	return shift.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full lifecycle: open shift → sale → partial return → full return.
func TestE2E_SaleAndReturnCycle(t *testing.T) {
	env := setupTestEnv(t)
	p := seedProduct(t, env.db, "Soda 2L", "7890001000001", 30, 20)
	shiftID := openShift(t, env)

	// Commit a two-unit cash sale
	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"shift_id": shiftID,
			"items": []map[string]any{
				{"id": "1", "product_id": p.ID.String(), "quantity": 2, "price_type": "retail"},
			},
			"payment_method": "cash",
			"cash_amount":    100.0,
		}), env.cashier)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		SaleID string `json:"sale_id"`
		Folio  string `json:"folio"`
		Total  string `json:"total"`
		Change string `json:"change"`
	}
	decodeJSON(t, saleResp, &sale)
	assert.Equal(t, "00000001", sale.Folio)
	assert.Equal(t, "60", sale.Total)
	assert.Equal(t, "40", sale.Change)

	// Look the sale up to get the item id
	detailResp := do(t, env.server, "GET", "/v1/sales/"+sale.SaleID, nil, env.cashier)
	require.Equal(t, http.StatusOK, detailResp.StatusCode)
	var detail struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decodeJSON(t, detailResp, &detail)
	require.Len(t, detail.Items, 1)

	// Partial return (supervisor)
	retResp := do(t, env.server, "POST", "/v1/returns",
		jsonBody(t, map[string]any{
			"sale_id": sale.SaleID,
			"reason":  "defective",
			"lines": []map[string]any{
				{"sale_item_id": detail.Items[0].ID, "quantity": 1},
			},
		}), env.supervisor)
	require.Equal(t, http.StatusCreated, retResp.StatusCode)
	var ret struct {
		Folio       int    `json:"folio"`
		Total       string `json:"total"`
		VoucherCode string `json:"voucher_code"`
		SaleStatus  string `json:"sale_status"`
	}
	decodeJSON(t, retResp, &ret)
	assert.Equal(t, 1, ret.Folio)
	assert.Equal(t, "30", ret.Total)
	assert.Equal(t, "V-00000001", ret.VoucherCode)
	assert.Equal(t, "partial_return", ret.SaleStatus)

	// Return the remaining unit — sale becomes fully returned
	retResp2 := do(t, env.server, "POST", "/v1/returns",
		jsonBody(t, map[string]any{
			"sale_id": sale.SaleID,
			"reason":  "defective",
			"lines": []map[string]any{
				{"sale_item_id": detail.Items[0].ID, "quantity": 1},
			},
		}), env.supervisor)
	require.Equal(t, http.StatusCreated, retResp2.StatusCode)
	decodeJSON(t, retResp2, &ret)
	assert.Equal(t, "fully_returned", ret.SaleStatus)

	// Stock is back to the seeded level
	var inv model.StoreInventory
	require.NoError(t, env.db.Where("product_id = ?", p.ID).First(&inv).Error)
	assert.True(t, inv.Stock.Equal(decimal.NewFromInt(20)))

	// Return info reports the accumulated voucher
	infoResp := do(t, env.server, "GET", "/v1/sales/"+sale.SaleID+"/returns", nil, env.cashier)
	require.Equal(t, http.StatusOK, infoResp.StatusCode)
	var info struct {
		Voucher struct {
			CurrentBalance string `json:"current_balance"`
		} `json:"voucher"`
	}
	decodeJSON(t, infoResp, &info)
	assert.Equal(t, "60", info.Voucher.CurrentBalance)
}

// Returns are supervisor-only.
func TestE2E_ReturnRequiresSupervisor(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/returns",
		jsonBody(t, map[string]any{
			"sale_id": uuid.NewString(),
			"reason":  "defective",
			"lines":   []map[string]any{},
		}), env.cashier)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	noToken := do(t, env.server, "GET", "/v1/sales", nil, "")
	assert.Equal(t, http.StatusUnauthorized, noToken.StatusCode)
}

// Shift closing derives its figures from committed sales.
func TestE2E_ShiftClose(t *testing.T) {
	env := setupTestEnv(t)
	p := seedProduct(t, env.db, "Bread Loaf", "7890001000002", 25, 50)
	shiftID := openShift(t, env)

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"shift_id": shiftID,
			"items": []map[string]any{
				{"id": "1", "product_id": p.ID.String(), "quantity": 4, "price_type": "retail"},
			},
			"payment_method": "cash",
			"cash_amount":    100.0,
		}), env.cashier)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)

	totalsResp := do(t, env.server, "GET", "/v1/shifts/"+shiftID+"/totals", nil, env.supervisor)
	require.Equal(t, http.StatusOK, totalsResp.StatusCode)
	var totals struct {
		SalesCount      int64  `json:"sales_count"`
		TotalSales      string `json:"total_sales"`
		CashSales       string `json:"cash_sales"`
		TheoreticalCash string `json:"theoretical_cash"`
	}
	decodeJSON(t, totalsResp, &totals)
	assert.Equal(t, int64(1), totals.SalesCount)
	assert.Equal(t, "100", totals.TotalSales)
	assert.Equal(t, "100", totals.CashSales)
	assert.Equal(t, "1100", totals.TheoreticalCash)

	closeResp := do(t, env.server, "POST", "/v1/shifts/"+shiftID+"/close",
		jsonBody(t, map[string]any{
			"final_cash":          1080.0,
			"card_terminal_total": 0.0,
		}), env.cashier)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closed struct {
		Status         string `json:"status"`
		ExpectedCash   string `json:"expected_cash"`
		CashDifference string `json:"cash_difference"`
		CashWithdrawal string `json:"cash_withdrawal"`
	}
	decodeJSON(t, closeResp, &closed)
	assert.Equal(t, "closed", closed.Status)
	assert.Equal(t, "1100", closed.ExpectedCash)
	assert.Equal(t, "-20", closed.CashDifference)
	assert.Equal(t, "100", closed.CashWithdrawal)
}
