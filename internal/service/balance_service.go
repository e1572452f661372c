package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/slamora/lupanes/internal/infra"
	"github.com/slamora/lupanes/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BalanceNotFound is the sentinel stored and returned when the ledger has
// no row for a customer.
const BalanceNotFound = "N/A"

// balanceKeyPrefix namespaces cache entries; the full key is
// "nevera_balance:<lowercased-name>".
const balanceKeyPrefix = "nevera_balance:"

// RowFetcher yields the remote worksheet's full row set. *infra.SheetsClient
// is the production implementation.
type RowFetcher interface {
	FetchRows(ctx context.Context) (infra.SheetRows, error)
}

// BalanceCache is the shared key-value store behind the gateway. There is
// deliberately no locking: concurrent misses may fetch twice, which is
// harmless because fetches are idempotent and only overwrite entries.
type BalanceCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// BalanceService is the gateway to the external balance ledger plus the
// projections built on top of it.
type BalanceService interface {
	// SearchBalance looks up one customer's balance case-insensitively.
	// Side effect (by contract, not accident): on a cache miss it fetches
	// the whole table once and warms the cache for EVERY row, so one
	// remote call serves all subsequent lookups until TTL expiry.
	// May block for the sum of all retry delays; returns
	// *infra.RetryExhaustedError once the retry budget is spent.
	SearchBalance(ctx context.Context, name string) (string, error)
	// CurrentBalance returns the customer's balance parsed as a decimal
	// (the ledger writes decimal commas); nil when the balance is absent
	// or not numeric.
	CurrentBalance(ctx context.Context, u *model.Usuario) (*decimal.Decimal, error)
	// ProjectedBalance is CurrentBalance minus the current month's
	// consumption; nil for non-customers or unavailable balances.
	ProjectedBalance(ctx context.Context, u *model.Usuario) (*decimal.Decimal, error)
}

// BalanceConfig carries the per-deployment retry and cache knobs.
type BalanceConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	CacheTTL   time.Duration
	// Sleep overrides the retry sleep; tests inject a recorder.
	Sleep func(time.Duration)
}

type balanceService struct {
	fetcher  RowFetcher
	cache    BalanceCache
	consumos AlbaranService
	cfg      BalanceConfig
}

func NewBalanceService(fetcher RowFetcher, cache BalanceCache, consumos AlbaranService, cfg BalanceConfig) BalanceService {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 4
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &balanceService{fetcher: fetcher, cache: cache, consumos: consumos, cfg: cfg}
}

func balanceKey(name string) string {
	return balanceKeyPrefix + strings.ToLower(name)
}

// loadBalanceTable fetches the worksheet through the retry policy: only the
// two known transient failure kinds consume retry budget.
func (s *balanceService) loadBalanceTable(ctx context.Context) (infra.SheetRows, error) {
	policy := infra.RetryPolicy{
		MaxAttempts: s.cfg.MaxRetries,
		BaseDelay:   s.cfg.BaseDelay,
		Retryable:   infra.IsTransientSheetError,
		Sleep:       s.cfg.Sleep,
	}

	var rows infra.SheetRows
	err := policy.Do(func() error {
		infra.BalanceRemoteFetches.Inc()
		var fetchErr error
		rows, fetchErr = s.fetcher.FetchRows(ctx)
		return fetchErr
	})
	if err != nil {
		var exhausted *infra.RetryExhaustedError
		if errors.As(err, &exhausted) {
			infra.BalanceFetchFailures.Inc()
			log.Warn().Int("attempts", exhausted.Attempts).Err(exhausted.Last).
				Msg("balance: spreadsheet fetch exhausted retries")
		}
		return nil, err
	}
	return rows, nil
}

func (s *balanceService) SearchBalance(ctx context.Context, name string) (string, error) {
	key := balanceKey(name)

	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		infra.BalanceCacheHits.Inc()
		return cached, nil
	}
	infra.BalanceCacheMisses.Inc()

	rows, err := s.loadBalanceTable(ctx)
	if err != nil {
		return "", err
	}

	// One pass: warm the cache for every well-formed row and resolve the
	// requested name along the way. Rows with fewer than two columns are
	// skipped silently.
	result := BalanceNotFound
	wantKey := key
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		rowName := strings.TrimSpace(row[0])
		rowKey := balanceKey(rowName)
		if err := s.cache.Set(ctx, rowKey, row[1], s.cfg.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", rowKey).Msg("balance: cache warm failed")
		}
		if rowKey == wantKey {
			result = row[1]
		}
	}

	if result == BalanceNotFound {
		// Negative entries are cached too, so repeated lookups for unknown
		// names do not hammer the spreadsheet.
		if err := s.cache.Set(ctx, key, BalanceNotFound, s.cfg.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("balance: cache warm failed")
		}
	}
	return result, nil
}

// parseBalance converts a ledger string ("1.234,56" or "100.50") to a
// decimal. The ledger's locale writes decimal commas; a parse failure means
// the balance stays a raw string and is treated as unavailable.
func parseBalance(raw string) *decimal.Decimal {
	normalized := strings.TrimSpace(raw)
	if strings.Contains(normalized, ",") {
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil
	}
	return &d
}

func (s *balanceService) CurrentBalance(ctx context.Context, u *model.Usuario) (*decimal.Decimal, error) {
	raw, err := s.SearchBalance(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	if raw == BalanceNotFound {
		return nil, nil
	}
	return parseBalance(raw), nil
}

func (s *balanceService) ProjectedBalance(ctx context.Context, u *model.Usuario) (*decimal.Decimal, error) {
	if !u.EsNevera() {
		return nil, nil
	}

	balance, err := s.CurrentBalance(ctx, u)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, nil
	}

	consumo, err := s.consumos.CurrentMonthConsumption(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	projected := balance.Sub(consumo)
	return &projected, nil
}
