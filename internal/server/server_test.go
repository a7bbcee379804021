package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vertex-bank-go/internal/auth"
	"vertex-bank-go/internal/database"
	"vertex-bank-go/internal/ledger"
	"vertex-bank-go/internal/metrics"
	"vertex-bank-go/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	server *httptest.Server
	store  *database.Service
	base   string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	return setupTestServerWithConfig(t, models.ServerConfig{})
}

func setupTestServerWithConfig(t *testing.T, cfg models.ServerConfig) *testEnv {
	t.Helper()
	svc, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:             database.DriverSQLite,
		Path:               filepath.Join(t.TempDir(), "bank.db"),
		MaxOpenConns:       4,
		MaxIdleConns:       2,
		PingTimeout:        5 * time.Second,
		BusyTimeout:        5 * time.Second,
		AtomicMaxAttempts:  3,
		AtomicRetryBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(svc.Close)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder("test")
	if err := recorder.Register(registry); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	authService, err := auth.NewService(svc, models.AuthConfig{SecretKey: "test-secret"})
	if err != nil {
		t.Fatalf("auth.NewService failed: %v", err)
	}
	directory := ledger.NewDirectory(svc, recorder)
	srv := New(cfg, Deps{
		Store:     svc,
		Directory: directory,
		Engine:    ledger.NewEngine(svc, directory, recorder),
		Auth:      authService,
		Metrics:   recorder,
		Gatherer:  registry,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, store: svc, base: ts.URL + DefaultAPIPrefix}
}

// doJSON sends body as JSON with an optional bearer token, checks the status
// code and decodes the response into out when it is not nil.
func doJSON(t *testing.T, method, url, token string, body any, wantCode int, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request build error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantCode {
		t.Fatalf("%s %s: code=%d want=%d body=%s", method, url, resp.StatusCode, wantCode, payload)
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			t.Fatalf("decode error: %v (body=%s)", err, payload)
		}
	}
	return resp
}

func register(t *testing.T, env *testEnv, email string) models.UserPublic {
	t.Helper()
	var user models.UserPublic
	doJSON(t, http.MethodPost, env.base+"/users/", "", models.UserCreate{
		Email:    email,
		FullName: "Test User",
		Password: "pa55word",
	}, http.StatusOK, &user)
	return user
}

func login(t *testing.T, env *testEnv, email, password string, wantCode int) string {
	t.Helper()
	resp, err := http.PostForm(env.base+"/login", url.Values{"username": {email}, "password": {password}})
	if err != nil {
		t.Fatalf("login request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantCode {
		t.Fatalf("login code=%d want=%d", resp.StatusCode, wantCode)
	}
	if wantCode != http.StatusOK {
		if wantCode == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("Expected WWW-Authenticate: Bearer on 401")
		}
		return ""
	}
	var token models.Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("Unexpected token response: %+v", token)
	}
	return token.AccessToken
}

func TestHTTPLedgerFlow(t *testing.T) {
	env := setupTestServer(t)

	alice := register(t, env, "alice@example.com")
	if alice.Email != "alice@example.com" || !alice.IsActive {
		t.Fatalf("Unexpected registration response: %+v", alice)
	}
	register(t, env, "bob@example.com")

	aliceToken := login(t, env, "alice@example.com", "pa55word", http.StatusOK)
	bobToken := login(t, env, "bob@example.com", "pa55word", http.StatusOK)

	var me models.UserPublic
	doJSON(t, http.MethodGet, env.base+"/users/me", aliceToken, nil, http.StatusOK, &me)
	if me.Id != alice.Id {
		t.Errorf("Expected /users/me to return %s, got %s", alice.Id, me.Id)
	}

	var bobAccount models.AccountPublic
	doJSON(t, http.MethodGet, env.base+"/users/account", bobToken, nil, http.StatusOK, &bobAccount)
	if bobAccount.Balance != "0.00" || len(bobAccount.Number) != 10 {
		t.Errorf("Unexpected account: %+v", bobAccount)
	}

	// Deposit 150, then fail to withdraw 200
	var deposit models.TransactionPublic
	doJSON(t, http.MethodPost, env.base+"/transactions/transaction", aliceToken,
		`{"amount": "150", "transaction_type": "deposit", "description": "opening"}`, http.StatusOK, &deposit)
	if deposit.Amount != "150.00" || deposit.TransactionType != models.TransactionTypeDeposit {
		t.Errorf("Unexpected deposit: %+v", deposit)
	}
	doJSON(t, http.MethodPost, env.base+"/transactions/transaction", aliceToken,
		map[string]any{"amount": 200, "transaction_type": "withdraw"}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, env.base+"/transactions/transaction", aliceToken,
		map[string]any{"amount": 5, "transaction_type": "transfer"}, http.StatusBadRequest, nil)

	// Transfer 50 to bob
	var receipt models.TransactionPublic
	doJSON(t, http.MethodPost, env.base+"/transactions/transfer", aliceToken,
		models.TransferCreate{TargetAccountNumber: bobAccount.Number, Amount: decimal.NewFromInt(50)},
		http.StatusOK, &receipt)
	if receipt.Amount != "50.00" || !strings.HasPrefix(receipt.Description, "Transfer to "+bobAccount.Number) {
		t.Errorf("Unexpected receipt: %+v", receipt)
	}

	var aliceAccount models.AccountPublic
	doJSON(t, http.MethodGet, env.base+"/users/account", aliceToken, nil, http.StatusOK, &aliceAccount)
	if aliceAccount.Balance != "100.00" {
		t.Errorf("Expected alice balance 100.00, got %s", aliceAccount.Balance)
	}
	doJSON(t, http.MethodGet, env.base+"/users/account", bobToken, nil, http.StatusOK, &bobAccount)
	if bobAccount.Balance != "50.00" {
		t.Errorf("Expected bob balance 50.00, got %s", bobAccount.Balance)
	}

	// Transfer failures
	doJSON(t, http.MethodPost, env.base+"/transactions/transfer", aliceToken,
		map[string]any{"target_account_number": aliceAccount.Number, "amount": "1"}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, env.base+"/transactions/transfer", aliceToken,
		map[string]any{"target_account_number": "0000000000", "amount": "1"}, http.StatusNotFound, nil)

	// History
	var history []models.TransactionPublic
	doJSON(t, http.MethodGet, env.base+"/transactions/?skip=0&limit=1", aliceToken, nil, http.StatusOK, &history)
	if len(history) != 1 || history[0].Id != receipt.Id {
		t.Errorf("Expected most recent transfer first, got %+v", history)
	}
	doJSON(t, http.MethodGet, env.base+"/transactions/", aliceToken, nil, http.StatusOK, &history)
	if len(history) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(history))
	}
	doJSON(t, http.MethodGet, env.base+"/transactions/?limit=abc", aliceToken, nil, http.StatusBadRequest, nil)

	// Reconcile
	var result models.ReconcileResult
	doJSON(t, http.MethodGet, env.base+"/transactions/reconcile", aliceToken, nil, http.StatusOK, &result)
	if !result.Consistent || result.Balance != "100.00" {
		t.Errorf("Unexpected reconcile result: %+v", result)
	}
}

func TestHTTPAuthFailures(t *testing.T) {
	env := setupTestServer(t)
	register(t, env, "alice@example.com")

	login(t, env, "alice@example.com", "wrong", http.StatusUnauthorized)
	login(t, env, "nobody@example.com", "pa55word", http.StatusUnauthorized)

	resp := doJSON(t, http.MethodGet, env.base+"/users/me", "", nil, http.StatusUnauthorized, nil)
	if resp.Header.Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("Expected WWW-Authenticate: Bearer header")
	}
	var body errorBody
	doJSON(t, http.MethodGet, env.base+"/transactions/", "garbage", nil, http.StatusUnauthorized, &body)
	if body.Detail == "" {
		t.Error("Expected error detail in body")
	}
}

func TestHTTPRegistrationFailures(t *testing.T) {
	env := setupTestServer(t)
	register(t, env, "alice@example.com")

	var body errorBody
	doJSON(t, http.MethodPost, env.base+"/users/", "", models.UserCreate{
		Email: "alice@example.com", FullName: "Again", Password: "pa55word",
	}, http.StatusBadRequest, &body)
	if !strings.Contains(body.Detail, "already registered") {
		t.Errorf("Expected duplicate email detail, got %q", body.Detail)
	}

	doJSON(t, http.MethodPost, env.base+"/users", "", models.UserCreate{
		Email: "bad", FullName: "Bad", Password: "pa55word",
	}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, env.base+"/users/", "", models.UserCreate{
		Email: "nopass@example.com", FullName: "No Pass",
	}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, env.base+"/users/", "", "{not json", http.StatusBadRequest, nil)
}

func TestHTTPHealthAndMetrics(t *testing.T) {
	env := setupTestServer(t)

	var health map[string]string
	doJSON(t, http.MethodGet, env.server.URL+"/health", "", nil, http.StatusOK, &health)
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", health)
	}
	doJSON(t, http.MethodGet, env.server.URL+"/", "", nil, http.StatusOK, nil)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request error: %v", err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(payload), `test_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("Expected health request to be counted, got:\n%s", payload)
	}

	env.store.Close()
	doJSON(t, http.MethodGet, env.server.URL+"/health", "", nil, http.StatusServiceUnavailable, nil)
}

func TestHTTPCORS(t *testing.T) {
	env := setupTestServerWithConfig(t, models.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	preflight := func(origin string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodOptions, env.base+"/transactions/transfer", nil)
		if err != nil {
			t.Fatalf("request build error: %v", err)
		}
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("preflight request error: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	resp := preflight("http://localhost:3000")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight code=%d want=%d", resp.StatusCode, http.StatusNoContent)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin=%q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials=%q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("Allow-Methods=%q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("Allow-Headers=%q", got)
	}

	resp = preflight("https://evil.example.com")
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no Allow-Origin for unknown origin, got %q", got)
	}

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/health", nil)
	if err != nil {
		t.Fatalf("request build error: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("health request error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health code=%d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin on simple request=%q", got)
	}
	if got := resp.Header.Get("Vary"); got != "Origin" {
		t.Errorf("Vary=%q", got)
	}
}

func TestHTTPLoginTrimsUsername(t *testing.T) {
	env := setupTestServer(t)
	register(t, env, "padded@example.com")
	login(t, env, "  padded@example.com ", "pa55word", http.StatusOK)
}

func TestRouteTemplate_Unmatched(t *testing.T) {
	for _, path := range []string{"/", "/api/v1/accounts/0f8fad5b-d9cb-469f-a165-70867728950e", "/no/such/route"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if got := routeTemplate(req); got != unmatchedRoute {
			t.Errorf("routeTemplate(%s) = %q, want %q", path, got, unmatchedRoute)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInactiveUser, http.StatusBadRequest},
		{ledger.ErrAccountNotFound, http.StatusNotFound},
		{ledger.ErrInsufficientFunds, http.StatusBadRequest},
		{ledger.ErrSelfTransfer, http.StatusBadRequest},
		{ledger.ErrDuplicateEmail, http.StatusBadRequest},
		{ledger.ErrStoreFailure, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	env := setupTestServer(t)
	srv := New(models.ServerConfig{ShutdownTimeout: time.Second, MaxConnections: 2}, Deps{Store: env.store})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	var health map[string]string
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err == nil {
			_ = json.NewDecoder(resp.Body).Decode(&health)
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", health)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
