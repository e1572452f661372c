package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Shared test helpers ───────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubPrecioRepo is an in-memory PrecioRepository.
type stubPrecioRepo struct {
	precios map[uuid.UUID][]model.PrecioProducto
}

func newStubPrecioRepo() *stubPrecioRepo {
	return &stubPrecioRepo{precios: make(map[uuid.UUID][]model.PrecioProducto)}
}

func (r *stubPrecioRepo) add(productoID uuid.UUID, valor string, start time.Time) {
	r.precios[productoID] = append(r.precios[productoID], model.PrecioProducto{
		ID:         uuid.New(),
		ProductoID: productoID,
		Valor:      dec(valor),
		StartDate:  start,
	})
}

func (r *stubPrecioRepo) Create(_ context.Context, p *model.PrecioProducto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.precios[p.ProductoID] = append(r.precios[p.ProductoID], *p)
	return nil
}

func (r *stubPrecioRepo) ListByProducto(_ context.Context, productoID uuid.UUID) ([]model.PrecioProducto, error) {
	return r.precios[productoID], nil
}

func (r *stubPrecioRepo) ExistsOn(_ context.Context, productoID uuid.UUID, startDate time.Time) (bool, error) {
	for _, p := range r.precios[productoID] {
		if p.StartDate.Equal(startDate) {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.PrecioRepository = (*stubPrecioRepo)(nil)

// stubProductoRepo is an in-memory ProductoRepository.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) add(nombre string, unidad model.Unidad) *model.Producto {
	p := &model.Producto{ID: uuid.New(), Nombre: nombre, Unidad: unidad, Activo: true}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductoRepo) FindByNombre(_ context.Context, nombre string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Nombre == nombre {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductoRepo) List(_ context.Context, soloActivos bool) ([]model.Producto, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		if soloActivos && !p.Activo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// stubUsuarioRepo is an in-memory UsuarioRepository preserving insertion
// order for ListActiveCustomers.
type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
	order    []uuid.UUID
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) add(username, rol string) *model.Usuario {
	u := &model.Usuario{ID: uuid.New(), Username: username, Nombre: username, Rol: rol, Activo: true}
	r.usuarios[u.ID] = u
	r.order = append(r.order, u.ID)
	return u
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	out := make([]model.Usuario, 0, len(r.order))
	for _, id := range r.order {
		u := r.usuarios[id]
		if !incluirInactivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListActiveCustomers(_ context.Context) ([]model.Usuario, error) {
	out := make([]model.Usuario, 0, len(r.order))
	for _, id := range r.order {
		u := r.usuarios[id]
		if u.Activo && u.Rol == model.RolNevera {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return errors.New("not found")
	}
	u.Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return errors.New("not found")
	}
	u.Activo = true
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// stubAlbaranRepo is an in-memory AlbaranRepository.
type stubAlbaranRepo struct {
	albaranes map[uuid.UUID]*model.Albaran
	order     []uuid.UUID
}

func newStubAlbaranRepo() *stubAlbaranRepo {
	return &stubAlbaranRepo{albaranes: make(map[uuid.UUID]*model.Albaran)}
}

func (r *stubAlbaranRepo) Create(_ context.Context, a *model.Albaran) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.albaranes[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

func (r *stubAlbaranRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Albaran, error) {
	a, ok := r.albaranes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (r *stubAlbaranRepo) Update(_ context.Context, a *model.Albaran) error {
	r.albaranes[a.ID] = a
	return nil
}

func (r *stubAlbaranRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.albaranes[id]; !ok {
		return errors.New("not found")
	}
	delete(r.albaranes, id)
	return nil
}

func (r *stubAlbaranRepo) ListByCustomerAndDay(_ context.Context, customerID uuid.UUID, day time.Time) ([]model.Albaran, error) {
	y, m, d := day.UTC().Date()
	var out []model.Albaran
	for _, id := range r.order {
		a, ok := r.albaranes[id]
		if !ok || a.CustomerID != customerID {
			continue
		}
		ay, am, ad := a.Fecha.UTC().Date()
		if ay == y && am == m && ad == d {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAlbaranRepo) ListByCustomerAndMonth(_ context.Context, customerID uuid.UUID, year, month int) ([]model.Albaran, error) {
	var out []model.Albaran
	for _, id := range r.order {
		a, ok := r.albaranes[id]
		if !ok || a.CustomerID != customerID {
			continue
		}
		if a.Fecha.UTC().Year() == year && int(a.Fecha.UTC().Month()) == month {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAlbaranRepo) ListByMonth(_ context.Context, year, month int) ([]model.Albaran, error) {
	var out []model.Albaran
	for _, id := range r.order {
		a := r.albaranes[id]
		if a.Fecha.UTC().Year() == year && int(a.Fecha.UTC().Month()) == month {
			out = append(out, *a)
		}
	}
	return out, nil
}

var _ repository.AlbaranRepository = (*stubAlbaranRepo)(nil)
