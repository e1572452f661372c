package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/repository"
	"github.com/slamora/lupanes/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProducerRepo is an in-memory ProducerRepository.
type stubProducerRepo struct {
	producers map[string]*model.Producer
}

func newStubProducerRepo() *stubProducerRepo {
	return &stubProducerRepo{producers: make(map[string]*model.Producer)}
}

func (r *stubProducerRepo) GetOrCreate(_ context.Context, nombre string) (*model.Producer, error) {
	if p, ok := r.producers[nombre]; ok {
		return p, nil
	}
	p := &model.Producer{ID: uuid.New(), Nombre: nombre}
	r.producers[nombre] = p
	return p, nil
}

func (r *stubProducerRepo) List(_ context.Context) ([]model.Producer, error) {
	out := make([]model.Producer, 0, len(r.producers))
	for _, p := range r.producers {
		out = append(out, *p)
	}
	return out, nil
}

var _ repository.ProducerRepository = (*stubProducerRepo)(nil)

type productoFixture struct {
	repo      *stubProductoRepo
	producers *stubProducerRepo
	precios   *stubPrecioRepo
	svc       service.ProductoService
	now       time.Time
}

func newProductoFixture() *productoFixture {
	f := &productoFixture{
		repo:      newStubProductoRepo(),
		producers: newStubProducerRepo(),
		precios:   newStubPrecioRepo(),
		now:       time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
	nowFn := func() time.Time { return f.now }
	precioSvc := service.NewPrecioService(f.precios, nowFn)
	f.svc = service.NewProductoService(f.repo, f.producers, precioSvc, nil, "gestion@example.org", nowFn)
	return f
}

func TestCrearProducto_WithInitialPriceOpensHistory(t *testing.T) {
	f := newProductoFixture()
	ctx := context.Background()

	inicial := dec("0.55")
	resp, err := f.svc.Crear(ctx, dto.CrearProductoRequest{
		Nombre:        "Leche fresca",
		Productor:     "Granja Pérez",
		Unidad:        "litro",
		PrecioInicial: &inicial,
	})
	require.NoError(t, err)
	assert.Equal(t, "Granja Pérez", resp.Productor)

	producto, err := f.repo.FindByNombre(ctx, "Leche fresca")
	require.NoError(t, err)

	detalle, err := f.svc.Detalle(ctx, producto.ID)
	require.NoError(t, err)
	assert.True(t, dec("0.55").Equal(detalle.Precio))
	assert.Equal(t, "litro", detalle.Unidad.Nombre)
	assert.False(t, detalle.Unidad.AceptaDecimales)
}

func TestCrearProducto_RejectsUnknownUnit(t *testing.T) {
	f := newProductoFixture()

	_, err := f.svc.Crear(context.Background(), dto.CrearProductoRequest{
		Nombre:    "Cosa",
		Productor: "Alguien",
		Unidad:    "arroba",
	})
	assert.Error(t, err)
}

func TestCrearProducto_ReusesExistingProducer(t *testing.T) {
	f := newProductoFixture()
	ctx := context.Background()

	_, err := f.svc.Crear(ctx, dto.CrearProductoRequest{Nombre: "Pan", Productor: "Horno Sur", Unidad: "unidad"})
	require.NoError(t, err)
	_, err = f.svc.Crear(ctx, dto.CrearProductoRequest{Nombre: "Harina", Productor: "Horno Sur", Unidad: "paquete"})
	require.NoError(t, err)

	producers, err := f.producers.List(ctx)
	require.NoError(t, err)
	assert.Len(t, producers, 1)
}

func TestDetalle_ErrorsWhenNoPriceInForce(t *testing.T) {
	f := newProductoFixture()
	sinPrecio := f.repo.add("Miel", model.UnidadBote)

	_, err := f.svc.Detalle(context.Background(), sinPrecio.ID)
	assert.ErrorIs(t, err, service.ErrPriceNotFoundOnDate)
}

func TestDetalle_KgProductAcceptsDecimals(t *testing.T) {
	f := newProductoFixture()
	queso := f.repo.add("Queso", model.UnidadKg)
	f.precios.add(queso.ID, "12.00", fecha(2026, time.January, 1))

	detalle, err := f.svc.Detalle(context.Background(), queso.ID)
	require.NoError(t, err)
	assert.True(t, detalle.Unidad.AceptaDecimales)
}

func TestDesactivarReactivarProducto(t *testing.T) {
	f := newProductoFixture()
	pan := f.repo.add("Pan", model.UnidadUnidad)
	ctx := context.Background()

	require.NoError(t, f.svc.Desactivar(ctx, pan.ID))
	activos, err := f.svc.Listar(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, activos)

	require.NoError(t, f.svc.Reactivar(ctx, pan.ID))
	activos, err = f.svc.Listar(ctx, true)
	require.NoError(t, err)
	assert.Len(t, activos, 1)
}
