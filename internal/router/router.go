package router

import (
	"time"

	"github.com/slamora/lupanes/internal/config"
	"github.com/slamora/lupanes/internal/handler"
	"github.com/slamora/lupanes/internal/infra"
	"github.com/slamora/lupanes/internal/middleware"
	"github.com/slamora/lupanes/internal/model"
	"github.com/slamora/lupanes/internal/repository"
	"github.com/slamora/lupanes/internal/service"
	"github.com/slamora/lupanes/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	sheets := infra.NewSheetsClient(cfg.BalanceSheetURL, cfg.BalanceSheetToken)
	balanceCache := infra.NewRedisCache(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	producerRepo := repository.NewProducerRepository(db)
	precioRepo := repository.NewPrecioRepository(db)
	albaranRepo := repository.NewAlbaranRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	precioSvc := service.NewPrecioService(precioRepo, nil)
	albaranSvc := service.NewAlbaranService(albaranRepo, productoRepo, usuarioRepo, precioSvc, nil)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	productoSvc := service.NewProductoService(productoRepo, producerRepo, precioSvc, dispatcher, cfg.ManagersEmail, nil)
	balanceSvc := service.NewBalanceService(sheets, balanceCache, albaranSvc, service.BalanceConfig{
		MaxRetries: cfg.BalanceMaxRetries,
		BaseDelay:  cfg.BalanceRetryBaseDelay(),
		CacheTTL:   cfg.BalanceCacheTTL(),
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc, usuarioRepo)
	detalleH := handler.NewDetalleProductoHandler(productoSvc, rdb)
	preciosH := handler.NewPreciosHandler(precioSvc)
	albaranesH := handler.NewAlbaranesHandler(albaranSvc)
	resumenH := handler.NewResumenHandler(albaranSvc)
	dashboardH := handler.NewDashboardHandler(usuarioRepo, balanceSvc, albaranSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		ambos := middleware.RequireRole(model.RolNevera, model.RolTienda)
		soloNevera := middleware.RequireRole(model.RolNevera)
		soloTienda := middleware.RequireRole(model.RolTienda)

		// Albaranes — the customer registers and manages her own notes
		v1.POST("/albaranes", soloNevera, albaranesH.Crear)
		v1.GET("/albaranes/hoy", soloNevera, albaranesH.Hoy)
		v1.PUT("/albaranes/:id", soloNevera, albaranesH.Actualizar)
		v1.DELETE("/albaranes/:id", soloNevera, albaranesH.Eliminar)
		v1.GET("/albaranes/archivo/:year/:month", ambos, albaranesH.Archivo)
		// Paper albaranes typed in by the managers
		v1.POST("/albaranes/digitalizar", soloTienda, albaranesH.Digitalizar)

		// Dashboard — customer home screen
		v1.GET("/dashboard", soloNevera, dashboardH.Get)

		// Productos — both roles read, managers write
		v1.GET("/productos", ambos, productosH.Listar)
		v1.GET("/productos/:id/detalle", ambos, detalleH.GetDetalle)
		v1.GET("/productos/:id/precios", ambos, preciosH.Historial)
		v1.POST("/productos/falta", soloNevera, productosH.NotificarFalta)
		prods := v1.Group("/productos", soloTienda)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.POST("/:id/precios", preciosH.Crear)
		}

		v1.GET("/productores", soloTienda, productosH.Productores)

		// Resumen mensual — managers only
		v1.GET("/resumen", soloTienda, resumenH.Mensual)
		v1.GET("/resumen/pdf", soloTienda, resumenH.MensualPDF)

		usuarios := v1.Group("/usuarios", soloTienda)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
