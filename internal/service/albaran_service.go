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

// ErrAlbaranNoEditable rejects edits/deletes outside the creation day.
var ErrAlbaranNoEditable = errors.New("el albarán solo puede modificarse el día de su registro")

// AlbaranService covers delivery-note CRUD plus the monetary derivations:
// per-note amount, per-customer monthly consumption, and the all-customer
// manager summary.
type AlbaranService interface {
	// Crear registers a note for the customer at the current moment.
	Crear(ctx context.Context, customerID uuid.UUID, req dto.CrearAlbaranRequest) (*dto.AlbaranResponse, error)
	// Digitalizar records a paper note on behalf of any customer, possibly
	// back-dated and for an inactive product.
	Digitalizar(ctx context.Context, creadorID uuid.UUID, req dto.DigitalizarAlbaranRequest) (*dto.AlbaranResponse, error)
	// Actualizar and Eliminar only work for the owning customer's notes
	// created today.
	Actualizar(ctx context.Context, customerID, albaranID uuid.UUID, req dto.ActualizarAlbaranRequest) (*dto.AlbaranResponse, error)
	Eliminar(ctx context.Context, customerID, albaranID uuid.UUID) error

	AlbaranesHoy(ctx context.Context, customerID uuid.UUID) (*dto.AlbaranesHoyResponse, error)
	ArchivoMensual(ctx context.Context, customerID uuid.UUID, year, month int) (*dto.AlbaranMonthResponse, error)

	// Amount derives a note's monetary amount: quantity times the price of
	// its product on the note's own date. Propagates ErrPriceNotFoundOnDate.
	Amount(ctx context.Context, a *model.Albaran) (decimal.Decimal, error)
	// Consumption sums Amount over the customer's notes in the given
	// calendar month. Notes without a resolvable price are skipped —
	// partial data beats aborting the aggregation. Unknown customers
	// yield zero.
	Consumption(ctx context.Context, customerID uuid.UUID, year, month int) (decimal.Decimal, error)
	CurrentMonthConsumption(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	// ResumenMensual computes Consumption for every active nevera,
	// attaching each total to its customer row in listing order.
	ResumenMensual(ctx context.Context, year, month int) (*dto.ResumenMensualResponse, error)
}

type albaranService struct {
	repo         repository.AlbaranRepository
	productoRepo repository.ProductoRepository
	usuarioRepo  repository.UsuarioRepository
	precios      PrecioService
	now          func() time.Time
}

func NewAlbaranService(
	repo repository.AlbaranRepository,
	productoRepo repository.ProductoRepository,
	usuarioRepo repository.UsuarioRepository,
	precios PrecioService,
	now func() time.Time,
) AlbaranService {
	if now == nil {
		now = time.Now
	}
	return &albaranService{
		repo:         repo,
		productoRepo: productoRepo,
		usuarioRepo:  usuarioRepo,
		precios:      precios,
		now:          now,
	}
}

// validarCantidad enforces the fractional-unit rule: only Kg products admit
// decimal quantities.
func validarCantidad(p *model.Producto, cantidad decimal.Decimal) error {
	if !cantidad.IsPositive() {
		return errors.New("la cantidad debe ser mayor que cero")
	}
	if !p.Unidad.AcceptsDecimals() && !cantidad.Equal(cantidad.Truncate(0)) {
		return fmt.Errorf("la unidad %q no admite cantidades decimales", p.Unidad)
	}
	return nil
}

func (s *albaranService) Crear(ctx context.Context, customerID uuid.UUID, req dto.CrearAlbaranRequest) (*dto.AlbaranResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if !producto.Activo {
		return nil, errors.New("el producto no está disponible")
	}
	if err := validarCantidad(producto, req.Cantidad); err != nil {
		return nil, err
	}

	albaran := &model.Albaran{
		CustomerID: customerID,
		ProductoID: productoID,
		Cantidad:   req.Cantidad,
		Fecha:      s.now(),
	}
	if err := s.repo.Create(ctx, albaran); err != nil {
		return nil, err
	}
	albaran.Producto = producto
	return s.toResponse(ctx, albaran), nil
}

func (s *albaranService) Digitalizar(ctx context.Context, creadorID uuid.UUID, req dto.DigitalizarAlbaranRequest) (*dto.AlbaranResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer_id inválido: %w", err)
	}
	customer, err := s.usuarioRepo.FindByID(ctx, customerID)
	if err != nil || !customer.EsNevera() {
		return nil, errors.New("nevera no encontrada")
	}

	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	// Paper notes may reference products that were deactivated since.
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if err := validarCantidad(producto, req.Cantidad); err != nil {
		return nil, err
	}

	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida: %w", err)
	}

	albaran := &model.Albaran{
		CustomerID: customerID,
		ProductoID: productoID,
		Cantidad:   req.Cantidad,
		Fecha:      fecha,
		CreadorID:  &creadorID,
		NumHoja:    req.NumHoja,
	}
	if err := s.repo.Create(ctx, albaran); err != nil {
		return nil, err
	}
	albaran.Producto = producto
	albaran.Customer = customer
	return s.toResponse(ctx, albaran), nil
}

// findEditable loads the albaran and checks the same-day ownership window.
func (s *albaranService) findEditable(ctx context.Context, customerID, albaranID uuid.UUID) (*model.Albaran, error) {
	albaran, err := s.repo.FindByID(ctx, albaranID)
	if err != nil {
		return nil, errors.New("albarán no encontrado")
	}
	if albaran.CustomerID != customerID {
		return nil, errors.New("albarán no encontrado")
	}
	if !sameDay(albaran.Fecha, s.now()) {
		return nil, ErrAlbaranNoEditable
	}
	return albaran, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (s *albaranService) Actualizar(ctx context.Context, customerID, albaranID uuid.UUID, req dto.ActualizarAlbaranRequest) (*dto.AlbaranResponse, error) {
	albaran, err := s.findEditable(ctx, customerID, albaranID)
	if err != nil {
		return nil, err
	}

	if req.ProductoID != nil {
		productoID, err := uuid.Parse(*req.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		producto, err := s.productoRepo.FindByID(ctx, productoID)
		if err != nil || !producto.Activo {
			return nil, errors.New("producto no encontrado")
		}
		albaran.ProductoID = productoID
		albaran.Producto = producto
	}
	if req.Cantidad != nil {
		producto := albaran.Producto
		if producto == nil {
			producto, err = s.productoRepo.FindByID(ctx, albaran.ProductoID)
			if err != nil {
				return nil, err
			}
			albaran.Producto = producto
		}
		if err := validarCantidad(producto, *req.Cantidad); err != nil {
			return nil, err
		}
		albaran.Cantidad = *req.Cantidad
	}

	if err := s.repo.Update(ctx, albaran); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, albaran), nil
}

func (s *albaranService) Eliminar(ctx context.Context, customerID, albaranID uuid.UUID) error {
	albaran, err := s.findEditable(ctx, customerID, albaranID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, albaran.ID)
}

func (s *albaranService) AlbaranesHoy(ctx context.Context, customerID uuid.UUID) (*dto.AlbaranesHoyResponse, error) {
	albaranes, err := s.repo.ListByCustomerAndDay(ctx, customerID, s.now())
	if err != nil {
		return nil, err
	}

	resp := &dto.AlbaranesHoyResponse{Data: make([]dto.AlbaranResponse, 0, len(albaranes)), Total: decimal.Zero}
	for i := range albaranes {
		item := s.toResponse(ctx, &albaranes[i])
		resp.Data = append(resp.Data, *item)
		if item.Importe != nil {
			resp.Total = resp.Total.Add(*item.Importe)
		}
	}
	return resp, nil
}

func (s *albaranService) ArchivoMensual(ctx context.Context, customerID uuid.UUID, year, month int) (*dto.AlbaranMonthResponse, error) {
	albaranes, err := s.repo.ListByCustomerAndMonth(ctx, customerID, year, month)
	if err != nil {
		return nil, err
	}

	resp := &dto.AlbaranMonthResponse{
		Year:  year,
		Month: month,
		Data:  make([]dto.AlbaranResponse, 0, len(albaranes)),
		Total: decimal.Zero,
	}
	for i := range albaranes {
		item := s.toResponse(ctx, &albaranes[i])
		resp.Data = append(resp.Data, *item)
		if item.Importe != nil {
			resp.Total = resp.Total.Add(*item.Importe)
		}
	}
	return resp, nil
}

func (s *albaranService) Amount(ctx context.Context, a *model.Albaran) (decimal.Decimal, error) {
	precio, err := s.precios.PriceOn(ctx, a.ProductoID, a.Fecha)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Cantidad.Mul(precio), nil
}

func (s *albaranService) Consumption(ctx context.Context, customerID uuid.UUID, year, month int) (decimal.Decimal, error) {
	albaranes, err := s.repo.ListByCustomerAndMonth(ctx, customerID, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range albaranes {
		importe, err := s.Amount(ctx, &albaranes[i])
		if errors.Is(err, ErrPriceNotFoundOnDate) {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(importe)
	}
	return total, nil
}

func (s *albaranService) CurrentMonthConsumption(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	now := s.now()
	return s.Consumption(ctx, customerID, now.Year(), int(now.Month()))
}

func (s *albaranService) ResumenMensual(ctx context.Context, year, month int) (*dto.ResumenMensualResponse, error) {
	customers, err := s.usuarioRepo.ListActiveCustomers(ctx)
	if err != nil {
		return nil, err
	}

	// One query for the whole month instead of one per customer; totals
	// are then grouped in memory. Notes of inactive or non-nevera users
	// fall out because only listed customers get a row.
	albaranes, err := s.repo.ListByMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	totals := make(map[uuid.UUID]decimal.Decimal, len(customers))
	for i := range albaranes {
		importe, err := s.Amount(ctx, &albaranes[i])
		if errors.Is(err, ErrPriceNotFoundOnDate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		id := albaranes[i].CustomerID
		totals[id] = totals[id].Add(importe)
	}

	resp := &dto.ResumenMensualResponse{
		Year:  year,
		Month: month,
		Data:  make([]dto.ConsumoCustomerItem, 0, len(customers)),
	}
	for i := range customers {
		c := &customers[i]
		resp.Data = append(resp.Data, dto.ConsumoCustomerItem{
			CustomerID: c.ID.String(),
			Username:   c.Username,
			Nombre:     c.Nombre,
			Total:      totals[c.ID],
		})
	}
	return resp, nil
}

func (s *albaranService) toResponse(ctx context.Context, a *model.Albaran) *dto.AlbaranResponse {
	resp := &dto.AlbaranResponse{
		ID:       a.ID.String(),
		Cantidad: a.Cantidad,
		Fecha:    a.Fecha.Format(time.RFC3339),
		NumHoja:  a.NumHoja,
	}
	if a.Customer != nil {
		resp.Customer = a.Customer.Username
	}
	if a.Producto != nil {
		resp.Producto = a.Producto.Nombre
		resp.Unidad = string(a.Producto.Unidad)
	}
	if importe, err := s.Amount(ctx, a); err == nil {
		resp.Importe = &importe
	}
	return resp
}

// CleanMonth normalizes a raw month query parameter: out-of-range or
// unparsable values fall back to the current month, always in the current
// year, matching how the summary screen has always behaved.
func CleanMonth(raw string, now time.Time) (year, month int) {
	year = now.Year()
	month = int(now.Month())
	if raw == "" {
		return year, month
	}
	var m int
	if _, err := fmt.Sscanf(raw, "%d", &m); err != nil || m < 1 || m > 12 {
		return year, month
	}
	return year, m
}
