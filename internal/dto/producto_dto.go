package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre      string `json:"nombre"      validate:"required,min=2,max=255"`
	Descripcion string `json:"descripcion"`
	Productor   string `json:"productor"   validate:"required,min=2,max=255"`
	Unidad      string `json:"unidad"      validate:"required"`
	// PrecioInicial opens the price history; without it the product has no
	// resolvable price until one is appended.
	PrecioInicial *decimal.Decimal `json:"precio_inicial"`
	// FechaPrecio is the start date of the initial price (default: today).
	FechaPrecio *string `json:"fecha_precio" validate:"omitempty,datetime=2006-01-02"`
}

type ActualizarProductoRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=255"`
	Descripcion *string `json:"descripcion"`
	Productor   *string `json:"productor"   validate:"omitempty,min=2,max=255"`
	Unidad      *string `json:"unidad"`
	Activo      *bool   `json:"activo"`
}

type NuevoPrecioRequest struct {
	Valor     decimal.Decimal `json:"valor"      validate:"required"`
	StartDate string          `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type NotificarFaltaProductoRequest struct {
	Producto   string          `json:"producto"   validate:"required"`
	Cantidad   decimal.Decimal `json:"cantidad"   validate:"required"`
	Unidad     string          `json:"unidad"     validate:"required"`
	Comentario string          `json:"comentario"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Productor   string `json:"productor"`
	Unidad      string `json:"unidad"`
	Activo      bool   `json:"activo"`
}

// ProductoDetalleResponse is served by the product AJAX endpoint that the
// albaran form polls: the current price plus whether the quantity input
// should accept decimals.
type ProductoDetalleResponse struct {
	ID     string          `json:"id"`
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
	Unidad UnidadResponse  `json:"unidad"`
}

type ProductorResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type UnidadResponse struct {
	Nombre          string `json:"nombre"`
	AceptaDecimales bool   `json:"acepta_decimales"`
}

type PrecioItem struct {
	ID        string          `json:"id"`
	Valor     decimal.Decimal `json:"valor"`
	StartDate string          `json:"start_date"`
}

type PrecioListResponse struct {
	ProductoID string       `json:"producto_id"`
	Data       []PrecioItem `json:"data"`
}
