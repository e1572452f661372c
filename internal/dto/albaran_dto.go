package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearAlbaranRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   decimal.Decimal `json:"cantidad"    validate:"required"`
}

// DigitalizarAlbaranRequest is the manager form for typing in paper
// albaranes: any customer, any (possibly inactive) product, back-dated.
type DigitalizarAlbaranRequest struct {
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   decimal.Decimal `json:"cantidad"    validate:"required"`
	Fecha      string          `json:"fecha"       validate:"required,datetime=2006-01-02"`
	NumHoja    *int            `json:"num_hoja"`
}

type ActualizarAlbaranRequest struct {
	ProductoID *string          `json:"producto_id" validate:"omitempty,uuid"`
	Cantidad   *decimal.Decimal `json:"cantidad"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AlbaranResponse struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Producto string          `json:"producto"`
	Unidad   string          `json:"unidad"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Fecha    string          `json:"fecha"`
	// Importe is quantity x price-on-date; null when no price resolves.
	Importe *decimal.Decimal `json:"importe"`
	NumHoja *int             `json:"num_hoja,omitempty"`
}

// AlbaranesHoyResponse backs the customer's "today" screen: the notes
// registered today plus their running total.
type AlbaranesHoyResponse struct {
	Data  []AlbaranResponse `json:"data"`
	Total decimal.Decimal   `json:"total"`
}

type AlbaranMonthResponse struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Data  []AlbaranResponse `json:"data"`
	Total decimal.Decimal   `json:"total"`
}

// ConsumoCustomerItem is one row of the manager's monthly summary. The
// total is attached to the customer record so callers keep ordering and
// per-customer metadata together.
type ConsumoCustomerItem struct {
	CustomerID string          `json:"customer_id"`
	Username   string          `json:"username"`
	Nombre     string          `json:"nombre"`
	Total      decimal.Decimal `json:"total"`
}

type ResumenMensualResponse struct {
	Year  int                   `json:"year"`
	Month int                   `json:"month"`
	Data  []ConsumoCustomerItem `json:"data"`
}

// DashboardResponse is the customer's home screen payload. Balance is the
// raw ledger string ("N/A" when unknown); ProjectedBalance is null whenever
// the balance is not numeric. BalanceWarning flags a degraded balance
// source, whatever the failure — the page renders, never 500s.
type DashboardResponse struct {
	Balance          string           `json:"balance"`
	Consumo          decimal.Decimal  `json:"consumo_mes_actual"`
	ProjectedBalance *decimal.Decimal `json:"saldo_proyectado"`
	BalanceWarning   bool             `json:"balance_warning"`
}
