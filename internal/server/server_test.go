package server_test

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/server"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postForm(t *testing.T, h http.Handler, form, input string) *httptest.ResponseRecorder {
	t.Helper()
	body := url.Values{"input": {input}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/forms/"+form, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestIndexRendersForms(t *testing.T) {
	srv := server.New(
		server.WithVaultAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		server.WithWarning("No signing wallet configured."),
	)

	w := get(t, srv.Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, id := range []string{
		`id="depositForm"`, `id="fundGasForm"`, `id="withdrawGasForm"`, `id="queryForm"`,
		`id="balanceDisplay"`, `id="beneficiaryDisplay"`,
		`action="/forms/deposit"`, `action="/forms/query"`,
	} {
		assert.Contains(t, body, id)
	}
	assert.Contains(t, body, "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	assert.Contains(t, body, "No signing wallet configured.")
}

func TestSubmitFormRunsHandler(t *testing.T) {
	srv := server.New()
	var got string
	srv.Bind(bridge.FormDeposit, func(_ context.Context, input string, out bridge.Output) {
		got = input
		out.Notify(bridge.Notice{Level: bridge.LevelSuccess, Message: "Deposit successful!"})
	})

	w := postForm(t, srv.Handler(), bridge.FormDeposit, "1.5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.5", got)
	assert.Contains(t, w.Body.String(), "Deposit successful!")
	assert.Contains(t, w.Body.String(), "notice-success")
}

func TestSubmitFormEscapesOutput(t *testing.T) {
	srv := server.New()
	srv.Bind(bridge.FormQuery, func(_ context.Context, input string, out bridge.Output) {
		out.Display(bridge.ElementBalance, input)
	})

	w := postForm(t, srv.Handler(), bridge.FormQuery, "<script>alert(1)</script>")
	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestDisplaysPersistAcrossRequests(t *testing.T) {
	srv := server.New()
	srv.Bind(bridge.FormQuery, func(_ context.Context, input string, out bridge.Output) {
		out.Display(bridge.ElementBalance, "Balance: "+input+" WBTC")
	})

	postForm(t, srv.Handler(), bridge.FormQuery, "1")
	postForm(t, srv.Handler(), bridge.FormQuery, "2")

	body := get(t, srv.Handler(), "/").Body.String()
	assert.Contains(t, body, "Balance: 2 WBTC", "last writer wins")
	assert.NotContains(t, body, "Balance: 1 WBTC")

	w := get(t, srv.Handler(), "/api/displays")
	var displays map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &displays))
	assert.Equal(t, "Balance: 2 WBTC", displays[bridge.ElementBalance])
}

func TestUnknownForm(t *testing.T) {
	srv := server.New()
	w := postForm(t, srv.Handler(), "mint", "1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown form.")

	req := httptest.NewRequest(http.MethodPost, "/api/forms/mint", strings.NewReader(`{"input":"1"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAPI(t *testing.T) {
	srv := server.New()
	srv.Bind(bridge.FormWithdrawGas, func(_ context.Context, _ string, out bridge.Output) {
		out.Notify(bridge.Notice{Level: bridge.LevelFailure, Message: "Gas withdrawal failed. Please try again."})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/forms/withdrawGas", strings.NewReader(`{"input":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notices []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "failure", resp.Notices[0].Level)
	assert.Equal(t, "Gas withdrawal failed. Please try again.", resp.Notices[0].Message)

	bad := httptest.NewRequest(http.MethodPost, "/api/forms/withdrawGas", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConcurrentSubmissionsOverlap(t *testing.T) {
	srv := server.New()
	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	release := make(chan struct{})
	srv.Bind(bridge.FormDeposit, func(_ context.Context, _ string, out bridge.Output) {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()
		<-release
		mu.Lock()
		running--
		mu.Unlock()
		out.Notify(bridge.Notice{Level: bridge.LevelSuccess, Message: "Deposit successful!"})
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.PostForm(ts.URL+"/forms/deposit", url.Values{"input": {"1"}})
			if err == nil {
				io.Copy(io.Discard, resp.Body) //nolint:errcheck
				resp.Body.Close()
			}
		}()
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return peak == 2
	}, 2*time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()
}

func TestMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := server.New(server.WithRegistry(reg))
	srv.Bind(bridge.FormDeposit, func(context.Context, string, bridge.Output) {})

	postForm(t, srv.Handler(), bridge.FormDeposit, "1")

	w := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	metrics := get(t, srv.Handler(), "/metrics").Body.String()
	assert.Contains(t, metrics, `w3vault_http_requests_total{method="POST",path="/forms/:form",status="200"} 1`)
	assert.Contains(t, metrics, `w3vault_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := server.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunBadAddress(t *testing.T) {
	err := server.New().Run(context.Background(), "256.0.0.1:bad")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// end to end through the bridge
// ---------------------------------------------------------------------------

type stubVault struct{}

func (stubVault) Deposit(context.Context, common.Address, *big.Int) (*chain.TxReceipt, error) {
	return &chain.TxReceipt{Hash: "0x1", Status: 1}, nil
}
func (stubVault) FundGas(context.Context, common.Address, common.Address, *big.Int) (*chain.TxReceipt, error) {
	return &chain.TxReceipt{Hash: "0x2", Status: 1}, nil
}
func (stubVault) WithdrawGas(context.Context, common.Address, *big.Int) (*chain.TxReceipt, error) {
	return nil, chain.ErrReverted
}
func (stubVault) CheckBalance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(2_000_000_000_000_000_000), nil
}
func (stubVault) CheckBeneficiary(context.Context, common.Address) (common.Address, error) {
	return common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), nil
}

type stubAccounts struct{}

func (stubAccounts) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")}, nil
}

func TestBridgeOverHTTP(t *testing.T) {
	srv := server.New()
	bridge.New(stubAccounts{}, stubVault{}).Wire(srv)
	h := srv.Handler()

	assert.Contains(t, postForm(t, h, "deposit", "1").Body.String(), "Deposit successful!")
	assert.Contains(t, postForm(t, h, "fundGas", "0.1").Body.String(), "Gas funded successfully!")
	assert.Contains(t, postForm(t, h, "withdrawGas", "1").Body.String(), "Gas withdrawal failed. Please try again.")
	assert.Contains(t, postForm(t, h, "deposit", "one").Body.String(), "Deposit failed. Please try again.")

	body := postForm(t, h, "query", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266").Body.String()
	assert.Contains(t, body, "Balance: 2 WBTC")
	assert.Contains(t, body, "Beneficiary: 0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	body = postForm(t, h, "query", "not-an-address").Body.String()
	assert.Contains(t, body, "Query failed. Please try again.")
	assert.Contains(t, body, "Balance: 2 WBTC", "failed query leaves displays untouched")
}
