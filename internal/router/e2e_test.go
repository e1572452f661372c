//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slamora/lupanes/internal/config"
	"github.com/slamora/lupanes/internal/infra"
	"github.com/slamora/lupanes/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

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

type testEnv struct {
	server      *httptest.Server
	tiendaToken string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("lupanes_test"),
		tcPostgres.WithUsername("lupanes"),
		tcPostgres.WithPassword("lupanes"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
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
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		// Unreachable ledger with a one-attempt budget: the dashboard must
		// degrade instead of blocking or failing.
		BalanceSheetURL:        "http://127.0.0.1:1/balance.xlsx",
		BalanceMaxRetries:      1,
		BalanceRetryBaseMS:     1,
		BalanceCacheTTLSeconds: 60,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("lupanes2026"), bcrypt.MinCost)
	require.NoError(t, err)
	err = db.Exec(`INSERT INTO usuarios (id, username, nombre, password_hash, rol, activo, created_at, updated_at)
		VALUES (gen_random_uuid(), 'tienda', 'Tienda E2E', ?, 'tienda', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error
	require.NoError(t, err)

	r := router.New(cfg, db, rdb)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "tienda", "password": "lupanes2026"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, tiendaToken: loginBody.AccessToken}
}

func (env *testEnv) loginNevera(t *testing.T, username, password string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": password}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	return body.AccessToken
}

func TestE2E_AlbaranCycle(t *testing.T) {
	env := setupTestEnv(t)

	// Manager creates a product with an opening price.
	prodResp := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"nombre":         "Leche fresca",
			"productor":      "Granja E2E",
			"unidad":         "litro",
			"precio_inicial": "0.50",
		}), env.tiendaToken)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, prodResp, &prod)

	// Manager registers a customer account.
	userResp := do(t, env.server, "POST", "/v1/usuarios",
		jsonBody(t, map[string]any{
			"username": "nevera_e2e",
			"nombre":   "Nevera E2E",
			"password": "secreta123",
			"rol":      "nevera",
		}), env.tiendaToken)
	require.Equal(t, http.StatusCreated, userResp.StatusCode)

	neveraToken := env.loginNevera(t, "nevera_e2e", "secreta123")

	// Customer may not create products.
	forbidden := do(t, env.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{"nombre": "X", "productor": "Y", "unidad": "unidad"}), neveraToken)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	forbidden.Body.Close()

	// Customer registers a delivery note.
	albResp := do(t, env.server, "POST", "/v1/albaranes",
		jsonBody(t, map[string]any{"producto_id": prod.ID, "cantidad": "10"}), neveraToken)
	require.Equal(t, http.StatusCreated, albResp.StatusCode)
	var alb struct {
		ID      string  `json:"id"`
		Importe *string `json:"importe"`
	}
	decodeJSON(t, albResp, &alb)
	require.NotNil(t, alb.Importe)
	assert.Equal(t, "5", *alb.Importe)

	// Today's screen shows the note and its total.
	hoyResp := do(t, env.server, "GET", "/v1/albaranes/hoy", nil, neveraToken)
	require.Equal(t, http.StatusOK, hoyResp.StatusCode)
	var hoy struct {
		Data  []json.RawMessage `json:"data"`
		Total string            `json:"total"`
	}
	decodeJSON(t, hoyResp, &hoy)
	assert.Len(t, hoy.Data, 1)
	assert.Equal(t, "5", hoy.Total)

	// The manager summary carries the same total.
	resumenResp := do(t, env.server, "GET", "/v1/resumen", nil, env.tiendaToken)
	require.Equal(t, http.StatusOK, resumenResp.StatusCode)
	var resumen struct {
		Data []struct {
			Username string `json:"username"`
			Total    string `json:"total"`
		} `json:"data"`
	}
	decodeJSON(t, resumenResp, &resumen)
	require.Len(t, resumen.Data, 1)
	assert.Equal(t, "nevera_e2e", resumen.Data[0].Username)
	assert.Equal(t, "5", resumen.Data[0].Total)
}

func TestE2E_DashboardDegradesWhenLedgerUnreachable(t *testing.T) {
	env := setupTestEnv(t)

	userResp := do(t, env.server, "POST", "/v1/usuarios",
		jsonBody(t, map[string]any{
			"username": "nevera_sin_saldo",
			"nombre":   "Nevera Sin Saldo",
			"password": "secreta123",
			"rol":      "nevera",
		}), env.tiendaToken)
	require.Equal(t, http.StatusCreated, userResp.StatusCode)

	neveraToken := env.loginNevera(t, "nevera_sin_saldo", "secreta123")

	dashResp := do(t, env.server, "GET", "/v1/dashboard", nil, neveraToken)
	require.Equal(t, http.StatusOK, dashResp.StatusCode)
	var dash struct {
		Balance        string `json:"balance"`
		BalanceWarning bool   `json:"balance_warning"`
	}
	decodeJSON(t, dashResp, &dash)
	assert.Equal(t, "N/A", dash.Balance)
	assert.True(t, dash.BalanceWarning)
}
