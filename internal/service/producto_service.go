package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/repository"
	"github.com/slamora/lupanes/internal/worker"

	"github.com/google/uuid"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, soloActivos bool) ([]dto.ProductoResponse, error)
	// Detalle backs the albaran form's AJAX lookup: current price plus
	// whether the quantity field accepts decimals.
	Detalle(ctx context.Context, id uuid.UUID) (*dto.ProductoDetalleResponse, error)
	Productores(ctx context.Context) ([]dto.ProductorResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	// NotificarFalta enqueues a missing-product notice for the managers.
	NotificarFalta(ctx context.Context, reporter *model.Usuario, req dto.NotificarFaltaProductoRequest) error
}

type productoService struct {
	repo          repository.ProductoRepository
	producerRepo  repository.ProducerRepository
	precios       PrecioService
	dispatcher    *worker.Dispatcher
	managersEmail string
	now           func() time.Time
}

func NewProductoService(
	repo repository.ProductoRepository,
	producerRepo repository.ProducerRepository,
	precios PrecioService,
	dispatcher *worker.Dispatcher,
	managersEmail string,
	now func() time.Time,
) ProductoService {
	if now == nil {
		now = time.Now
	}
	return &productoService{
		repo:          repo,
		producerRepo:  producerRepo,
		precios:       precios,
		dispatcher:    dispatcher,
		managersEmail: managersEmail,
		now:           now,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	unidad := model.Unidad(req.Unidad)
	if !unidad.Valid() {
		return nil, fmt.Errorf("unidad desconocida: %q", req.Unidad)
	}

	producer, err := s.producerRepo.GetOrCreate(ctx, req.Productor)
	if err != nil {
		return nil, err
	}

	producto := &model.Producto{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		ProducerID:  producer.ID,
		Unidad:      unidad,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, producto); err != nil {
		return nil, err
	}
	producto.Producer = producer

	// Without an initial price the product has no resolvable price and
	// albaranes referencing it are excluded from totals.
	if req.PrecioInicial != nil {
		fecha := s.now().Format("2006-01-02")
		if req.FechaPrecio != nil {
			fecha = *req.FechaPrecio
		}
		_, err := s.precios.NuevoPrecio(ctx, producto.ID, dto.NuevoPrecioRequest{
			Valor:     *req.PrecioInicial,
			StartDate: fecha,
		})
		if err != nil {
			return nil, err
		}
	}

	return productoToResponse(producto), nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}

	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		producto.Descripcion = *req.Descripcion
	}
	if req.Unidad != nil {
		unidad := model.Unidad(*req.Unidad)
		if !unidad.Valid() {
			return nil, fmt.Errorf("unidad desconocida: %q", *req.Unidad)
		}
		producto.Unidad = unidad
	}
	if req.Productor != nil {
		producer, err := s.producerRepo.GetOrCreate(ctx, *req.Productor)
		if err != nil {
			return nil, err
		}
		producto.ProducerID = producer.ID
		producto.Producer = producer
	}
	if req.Activo != nil {
		producto.Activo = *req.Activo
	}

	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, err
	}
	return productoToResponse(producto), nil
}

func (s *productoService) Listar(ctx context.Context, soloActivos bool) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx, soloActivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		resp = append(resp, *productoToResponse(&productos[i]))
	}
	return resp, nil
}

func (s *productoService) Productores(ctx context.Context) ([]dto.ProductorResponse, error) {
	producers, err := s.producerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductorResponse, 0, len(producers))
	for i := range producers {
		resp = append(resp, dto.ProductorResponse{
			ID:     producers[i].ID.String(),
			Nombre: producers[i].Nombre,
		})
	}
	return resp, nil
}

func (s *productoService) Detalle(ctx context.Context, id uuid.UUID) (*dto.ProductoDetalleResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}

	precio, err := s.precios.CurrentPrice(ctx, id)
	if err != nil {
		// ErrPriceNotFoundOnDate included: the detail view surfaces
		// "price unavailable" instead of inventing a zero.
		return nil, err
	}

	return &dto.ProductoDetalleResponse{
		ID:     producto.ID.String(),
		Nombre: producto.Nombre,
		Precio: precio,
		Unidad: dto.UnidadResponse{
			Nombre:          string(producto.Unidad),
			AceptaDecimales: producto.Unidad.AcceptsDecimals(),
		},
	}, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("producto no encontrado")
	}
	producto.Activo = false
	return s.repo.Update(ctx, producto)
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("producto no encontrado")
	}
	producto.Activo = true
	return s.repo.Update(ctx, producto)
}

func (s *productoService) NotificarFalta(ctx context.Context, reporter *model.Usuario, req dto.NotificarFaltaProductoRequest) error {
	to := []string{s.managersEmail}
	if reporter.Email != nil {
		to = append(to, *reporter.Email)
	}

	body := fmt.Sprintf(
		"La nevera %s ha notificado que falta un producto:\n\n"+
			"Producto: %s\nCantidad: %s %s\n",
		reporter.Username, req.Producto, req.Cantidad.String(), req.Unidad,
	)
	if req.Comentario != "" {
		body += fmt.Sprintf("Comentario: %s\n", req.Comentario)
	}

	return s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		To:      to,
		Subject: "Falta un producto - App Lupierra",
		Body:    body,
	})
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Unidad:      string(p.Unidad),
		Activo:      p.Activo,
	}
	if p.Producer != nil {
		resp.Productor = p.Producer.Nombre
	}
	return resp
}
