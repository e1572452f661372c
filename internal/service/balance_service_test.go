package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slamora/lupanes/internal/infra"
	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves scripted responses: one entry per expected call.
type stubFetcher struct {
	rows  infra.SheetRows
	errs  []error
	calls int
}

func (f *stubFetcher) FetchRows(_ context.Context) (infra.SheetRows, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.rows, nil
}

// memCache is an in-memory BalanceCache recording TTLs.
type memCache struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func newBalanceFixture(fetcher *stubFetcher, cache *memCache, sleeps *[]time.Duration) (service.BalanceService, *albaranFixture) {
	albaranes := newAlbaranFixture()
	cfg := service.BalanceConfig{
		MaxRetries: 4,
		BaseDelay:  10 * time.Millisecond,
		CacheTTL:   time.Hour,
	}
	if sleeps != nil {
		cfg.Sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	} else {
		cfg.Sleep = func(time.Duration) {}
	}
	return service.NewBalanceService(fetcher, cache, albaranes.svc, cfg), albaranes
}

func TestSearchBalance_MissWarmsEveryRow(t *testing.T) {
	fetcher := &stubFetcher{rows: infra.SheetRows{
		{"Nevera Centro", "120,50"},
		{"Nevera Sur", "-3,25"},
		{"corta"}, // malformed, skipped
		{" Nevera Norte ", "0,00"},
	}}
	cache := newMemCache()
	svc, _ := newBalanceFixture(fetcher, cache, nil)
	ctx := context.Background()

	got, err := svc.SearchBalance(ctx, "NEVERA CENTRO")
	require.NoError(t, err)
	assert.Equal(t, "120,50", got)
	assert.Equal(t, 1, fetcher.calls)

	// Every well-formed row is warmed, names trimmed and lowercased.
	assert.Equal(t, "120,50", cache.values["nevera_balance:nevera centro"])
	assert.Equal(t, "-3,25", cache.values["nevera_balance:nevera sur"])
	assert.Equal(t, "0,00", cache.values["nevera_balance:nevera norte"])
	assert.Equal(t, time.Hour, cache.ttls["nevera_balance:nevera sur"])

	// Subsequent lookups for any warmed name are served without refetching.
	got, err = svc.SearchBalance(ctx, "nevera sur")
	require.NoError(t, err)
	assert.Equal(t, "-3,25", got)
	assert.Equal(t, 1, fetcher.calls)
}

func TestSearchBalance_UnknownNameIsCachedNegative(t *testing.T) {
	fetcher := &stubFetcher{rows: infra.SheetRows{{"Nevera Centro", "10,00"}}}
	cache := newMemCache()
	svc, _ := newBalanceFixture(fetcher, cache, nil)
	ctx := context.Background()

	got, err := svc.SearchBalance(ctx, "Fantasma")
	require.NoError(t, err)
	assert.Equal(t, service.BalanceNotFound, got)
	assert.Equal(t, service.BalanceNotFound, cache.values["nevera_balance:fantasma"])

	// The negative entry short-circuits the next lookup.
	_, err = svc.SearchBalance(ctx, "fantasma")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestSearchBalance_RetriesTransientFailuresWithBackoff(t *testing.T) {
	transient := &infra.SheetAPIError{StatusCode: 503}
	fetcher := &stubFetcher{
		rows: infra.SheetRows{{"Nevera Centro", "10,00"}},
		errs: []error{transient, transient, nil},
	}
	var sleeps []time.Duration
	svc, _ := newBalanceFixture(fetcher, newMemCache(), &sleeps)

	got, err := svc.SearchBalance(context.Background(), "nevera centro")
	require.NoError(t, err)
	assert.Equal(t, "10,00", got)
	assert.Equal(t, 3, fetcher.calls)

	// Delay before re-attempt i is base*2^i plus jitter in [0, 10%).
	require.Len(t, sleeps, 2)
	base := 10 * time.Millisecond
	for i, d := range sleeps {
		lower := base << uint(i)
		upper := lower + lower/10
		assert.GreaterOrEqual(t, d, lower, "sleep %d", i)
		assert.Less(t, d, upper, "sleep %d", i)
	}
}

func TestSearchBalance_ExhaustsRetryBudget(t *testing.T) {
	transient := &infra.SheetAPIError{StatusCode: 500}
	fetcher := &stubFetcher{errs: []error{transient, transient, transient, transient}}
	var sleeps []time.Duration
	svc, _ := newBalanceFixture(fetcher, newMemCache(), &sleeps)

	_, err := svc.SearchBalance(context.Background(), "nevera centro")
	var exhausted *infra.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Equal(t, 4, fetcher.calls)
	assert.Len(t, sleeps, 3)
}

func TestSearchBalance_NonTransientFailsImmediately(t *testing.T) {
	fetcher := &stubFetcher{errs: []error{&infra.SheetAPIError{StatusCode: 404}}}
	var sleeps []time.Duration
	svc, _ := newBalanceFixture(fetcher, newMemCache(), &sleeps)

	_, err := svc.SearchBalance(context.Background(), "nevera centro")
	require.Error(t, err)
	var exhausted *infra.RetryExhaustedError
	assert.False(t, errors.As(err, &exhausted), "a non-transient error must not be wrapped as exhausted")
	assert.Equal(t, 1, fetcher.calls)
	assert.Empty(t, sleeps)
}

func TestCurrentBalance_ParsesDecimalComma(t *testing.T) {
	fetcher := &stubFetcher{rows: infra.SheetRows{
		{"nevera centro", "1.234,56"},
		{"nevera sur", "100.50"},
		{"nevera rota", "no-numerico"},
	}}
	svc, _ := newBalanceFixture(fetcher, newMemCache(), nil)
	ctx := context.Background()

	centro := &model.Usuario{Username: "nevera centro", Rol: model.RolNevera, Activo: true}
	balance, err := svc.CurrentBalance(ctx, centro)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.True(t, dec("1234.56").Equal(*balance), "got %s", balance)

	sur := &model.Usuario{Username: "nevera sur", Rol: model.RolNevera, Activo: true}
	balance, err = svc.CurrentBalance(ctx, sur)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.True(t, dec("100.50").Equal(*balance))

	rota := &model.Usuario{Username: "nevera rota", Rol: model.RolNevera, Activo: true}
	balance, err = svc.CurrentBalance(ctx, rota)
	require.NoError(t, err)
	assert.Nil(t, balance)

	desconocida := &model.Usuario{Username: "fantasma", Rol: model.RolNevera, Activo: true}
	balance, err = svc.CurrentBalance(ctx, desconocida)
	require.NoError(t, err)
	assert.Nil(t, balance)
}

func TestProjectedBalance_SubtractsCurrentMonthConsumption(t *testing.T) {
	fetcher := &stubFetcher{rows: infra.SheetRows{{"ana", "100,00"}}}
	svc, albaranes := newBalanceFixture(fetcher, newMemCache(), nil)
	ctx := context.Background()

	ana := albaranes.usuarios.add("ana", model.RolNevera)
	leche := albaranes.productos.add("Leche", model.UnidadLitro)
	albaranes.precios.add(leche.ID, "1.00", fecha(2026, time.January, 1))
	// The fixture clock is frozen inside March 2026.
	albaranes.addAlbaran(ana.ID, leche, "5", fecha(2026, time.March, 4))
	albaranes.addAlbaran(ana.ID, leche, "2", fecha(2026, time.February, 20)) // previous month

	projected, err := svc.ProjectedBalance(ctx, ana)
	require.NoError(t, err)
	require.NotNil(t, projected)
	assert.True(t, dec("95.00").Equal(*projected), "got %s", projected)
}

func TestProjectedBalance_NilForManagersAndUnknownBalances(t *testing.T) {
	fetcher := &stubFetcher{rows: infra.SheetRows{{"ana", "100,00"}}}
	svc, albaranes := newBalanceFixture(fetcher, newMemCache(), nil)
	ctx := context.Background()

	tienda := albaranes.usuarios.add("tienda", model.RolTienda)
	projected, err := svc.ProjectedBalance(ctx, tienda)
	require.NoError(t, err)
	assert.Nil(t, projected)

	sinSaldo := albaranes.usuarios.add("sin_saldo", model.RolNevera)
	projected, err = svc.ProjectedBalance(ctx, sinSaldo)
	require.NoError(t, err)
	assert.Nil(t, projected)
}
