package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPriceNotFoundOnDate is returned when a product has no price record
// whose start date is on or before the requested moment. Aggregating
// callers skip the note; detail views surface "price unavailable".
var ErrPriceNotFoundOnDate = errors.New("no existe precio para esa fecha")

// ErrPrecioDuplicado rejects a second price for the same (product, date).
var ErrPrecioDuplicado = errors.New("ya existe precio para esa fecha")

// PrecioService resolves point-in-time prices from the append-only history.
type PrecioService interface {
	// PriceOn returns the value of the price record with the greatest
	// start date not after at's calendar date.
	PriceOn(ctx context.Context, productoID uuid.UUID, at time.Time) (decimal.Decimal, error)
	CurrentPrice(ctx context.Context, productoID uuid.UUID) (decimal.Decimal, error)
	NuevoPrecio(ctx context.Context, productoID uuid.UUID, req dto.NuevoPrecioRequest) (*dto.PrecioItem, error)
	ListPrecios(ctx context.Context, productoID uuid.UUID) (*dto.PrecioListResponse, error)
}

type precioService struct {
	repo repository.PrecioRepository
	now  func() time.Time
}

func NewPrecioService(repo repository.PrecioRepository, now func() time.Time) PrecioService {
	if now == nil {
		now = time.Now
	}
	return &precioService{repo: repo, now: now}
}

// dateOf truncates a timestamp to its calendar date (midnight UTC), the
// granularity price start dates are stored at.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *precioService) PriceOn(ctx context.Context, productoID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	precios, err := s.repo.ListByProducto(ctx, productoID)
	if err != nil {
		return decimal.Zero, err
	}

	date := dateOf(at)
	var best *model.PrecioProducto
	for i := range precios {
		p := &precios[i]
		if p.StartDate.After(date) {
			continue
		}
		if best == nil || p.StartDate.After(best.StartDate) {
			best = p
		}
	}
	if best == nil {
		return decimal.Zero, ErrPriceNotFoundOnDate
	}
	return best.Valor, nil
}

func (s *precioService) CurrentPrice(ctx context.Context, productoID uuid.UUID) (decimal.Decimal, error) {
	return s.PriceOn(ctx, productoID, s.now())
}

func (s *precioService) NuevoPrecio(ctx context.Context, productoID uuid.UUID, req dto.NuevoPrecioRequest) (*dto.PrecioItem, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date inválida: %w", err)
	}
	if req.Valor.IsNegative() {
		return nil, errors.New("el precio no puede ser negativo")
	}

	exists, err := s.repo.ExistsOn(ctx, productoID, startDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPrecioDuplicado
	}

	precio := &model.PrecioProducto{
		ProductoID: productoID,
		Valor:      req.Valor,
		StartDate:  startDate,
	}
	if err := s.repo.Create(ctx, precio); err != nil {
		return nil, err
	}
	return &dto.PrecioItem{
		ID:        precio.ID.String(),
		Valor:     precio.Valor,
		StartDate: precio.StartDate.Format("2006-01-02"),
	}, nil
}

func (s *precioService) ListPrecios(ctx context.Context, productoID uuid.UUID) (*dto.PrecioListResponse, error) {
	precios, err := s.repo.ListByProducto(ctx, productoID)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PrecioItem, 0, len(precios))
	for _, p := range precios {
		data = append(data, dto.PrecioItem{
			ID:        p.ID.String(),
			Valor:     p.Valor,
			StartDate: p.StartDate.Format("2006-01-02"),
		})
	}
	return &dto.PrecioListResponse{ProductoID: productoID.String(), Data: data}, nil
}
